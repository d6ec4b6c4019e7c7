package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// AnswerEvaluator scores a candidate's answer and persists the result. Every
// AI failure degrades to a deterministic substitute; the only error surfaced
// to callers is a persistence failure, including ErrConflict when the question
// is already answered.
type AnswerEvaluator struct {
	Answers domain.AnswerRepository
	AI      domain.AIClient
}

// NewAnswerEvaluator constructs an AnswerEvaluator. ai may be nil.
func NewAnswerEvaluator(a domain.AnswerRepository, ai domain.AIClient) AnswerEvaluator {
	return AnswerEvaluator{Answers: a, AI: ai}
}

// evaluationTemperature is kept low to favor consistent scoring.
const evaluationTemperature = 0.2

// Evaluate produces and persists exactly one answer record for the question.
func (e AnswerEvaluator) Evaluate(ctx domain.Context, session domain.InterviewSession, question domain.InterviewQuestion, answerText string, timeTakenSec *int) (domain.UserAnswer, error) {
	tracer := otel.Tracer("usecase.evaluator")
	ctx, span := tracer.Start(ctx, "evaluator.Evaluate")
	defer span.End()

	ev := e.evaluateText(ctx, session, question, answerText)
	rating := ev.Rating
	observability.ObserveRating(rating)
	a := domain.UserAnswer{
		QuestionID:   question.ID,
		Text:         answerText,
		Feedback:     ev.Feedback,
		Rating:       &rating,
		Strengths:    ev.Strengths,
		Improvements: ev.Improvements,
		TimeTakenSec: timeTakenSec,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := e.Answers.Create(ctx, a)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.UserAnswer{}, fmt.Errorf("op=evaluator.evaluate: question already answered: %w", err)
		}
		return domain.UserAnswer{}, fmt.Errorf("op=evaluator.evaluate: %w", err)
	}
	a.ID = id
	return a, nil
}

// evaluateText produces the structured evaluation. It never fails: the AI
// being absent selects the rule-based evaluator, a call failure the degraded
// record, and a format mismatch the parser fallback.
func (e AnswerEvaluator) evaluateText(ctx domain.Context, session domain.InterviewSession, question domain.InterviewQuestion, answerText string) domain.Evaluation {
	if e.AI == nil {
		observability.AnswersEvaluatedTotal.WithLabelValues("rule_based").Inc()
		return ruleBasedEvaluation(answerText)
	}
	raw, err := e.AI.ChatText(ctx, evaluationSystemPrompt(session, question, answerText), "", evaluationTemperature)
	if err != nil {
		slog.Warn("AI evaluation failed, recording degraded answer", slog.Any("error", err), slog.String("question_id", question.ID))
		observability.AnswersEvaluatedTotal.WithLabelValues("ai_degraded").Inc()
		return degradedEvaluation()
	}
	ev, err := ParseEvaluation(raw)
	if err != nil {
		slog.Warn("evaluation response unparseable", slog.Any("error", err), slog.String("question_id", question.ID))
		observability.AnswersEvaluatedTotal.WithLabelValues("ai_unparsed").Inc()
		return FallbackEvaluation(raw)
	}
	observability.AnswersEvaluatedTotal.WithLabelValues("ai").Inc()
	return ev
}

func evaluationSystemPrompt(session domain.InterviewSession, question domain.InterviewQuestion, answerText string) string {
	return fmt.Sprintf(`You are an expert %s interviewer evaluating this answer:

Question: %q
Answer: %q
Difficulty: %s
Session Type: %s

Provide a comprehensive evaluation with this EXACT format:

Feedback: [Detailed constructive feedback about the answer quality, accuracy, and completeness]
Rating: [Single number from 1-10]
Strengths: [What the candidate did well in their answer]
Improvements: [Specific suggestions for improvement]

Be professional, constructive, and specific. Consider the difficulty level and session type when rating.`,
		session.JobRole, question.Text, answerText, question.Difficulty, session.Category)
}

// degradedEvaluation is recorded when the AI call itself failed.
func degradedEvaluation() domain.Evaluation {
	return domain.Evaluation{
		Feedback:     "Automated evaluation failed for this answer. Your response was recorded.",
		Rating:       5,
		Strengths:    "Response provided",
		Improvements: "Please try again later.",
	}
}

// ruleBasedEvaluation substitutes for the AI when no provider is configured.
// Classification is by word count alone: >100 words rates 7, >50 rates 6,
// anything shorter rates 5 with a prompt to elaborate.
func ruleBasedEvaluation(answerText string) domain.Evaluation {
	wordCount := textx.WordCount(answerText)
	feedback := fmt.Sprintf("Thank you for your %d-word response. ", wordCount)
	var rating int
	switch {
	case wordCount > 100:
		feedback += "Your answer is comprehensive and detailed."
		rating = 7
	case wordCount > 50:
		feedback += "Your answer covers the key points."
		rating = 6
	default:
		feedback += "Consider providing more detailed examples and explanations."
		rating = 5
	}
	strengths := "Concise response"
	if wordCount > 30 {
		strengths = "Clear communication"
	}
	return domain.Evaluation{
		Feedback:     feedback,
		Rating:       rating,
		Strengths:    strengths,
		Improvements: "Set up the GROQ_API_KEY environment variable for detailed AI evaluation and feedback.",
	}
}
