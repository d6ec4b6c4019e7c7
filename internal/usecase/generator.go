package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// QuestionGenerator produces and persists the next interview question for a
// session. A nil AI client, or any AI failure, selects the embedded fallback
// pool; generation only fails on a persistence error.
type QuestionGenerator struct {
	Questions domain.QuestionRepository
	AI        domain.AIClient
}

// NewQuestionGenerator constructs a QuestionGenerator. ai may be nil.
func NewQuestionGenerator(q domain.QuestionRepository, ai domain.AIClient) QuestionGenerator {
	return QuestionGenerator{Questions: q, AI: ai}
}

const (
	questionTemperature = 0.8
	hintTemperature     = 0.7
)

// difficultyForOrdinal maps the 1-based question ordinal to a target
// difficulty. Ordinals beyond the table default to medium.
func difficultyForOrdinal(ordinal int) domain.Difficulty {
	switch ordinal {
	case 1, 2:
		return domain.DifficultyEasy
	case 3, 4:
		return domain.DifficultyMedium
	case 5:
		return domain.DifficultyHard
	}
	return domain.DifficultyMedium
}

// Generate creates question #ordinal for the session and persists it. It
// returns ErrConflict when a concurrent request already filled the same
// ordinal; callers re-read the pending question in that case.
func (g QuestionGenerator) Generate(ctx domain.Context, session domain.InterviewSession, ordinal int) (domain.InterviewQuestion, error) {
	tracer := otel.Tracer("usecase.generator")
	ctx, span := tracer.Start(ctx, "generator.Generate")
	defer span.End()

	text, hint := g.questionText(ctx, session, ordinal)
	q := domain.InterviewQuestion{
		SessionID:  session.ID,
		Ordinal:    ordinal,
		Text:       text,
		Hint:       hint,
		Difficulty: difficultyForOrdinal(ordinal),
		Category:   session.Category,
		CreatedAt:  time.Now().UTC(),
	}
	id, err := g.Questions.Create(ctx, q)
	if err != nil {
		return domain.InterviewQuestion{}, fmt.Errorf("op=generator.generate: %w", err)
	}
	q.ID = id
	return q, nil
}

// questionText produces the question and hint text, never failing: any AI
// error degrades to the fallback pool.
func (g QuestionGenerator) questionText(ctx domain.Context, session domain.InterviewSession, ordinal int) (text, hint string) {
	if g.AI == nil {
		observability.QuestionsGeneratedTotal.WithLabelValues("fallback").Inc()
		return pickFallbackQuestion(session.Category, session.JobRole)
	}
	previous, err := g.Questions.ListBySession(ctx, session.ID)
	if err != nil {
		slog.Warn("listing previous questions failed, using fallback pool", slog.Any("error", err), slog.String("session_id", session.ID))
		observability.QuestionsGeneratedTotal.WithLabelValues("fallback").Inc()
		return pickFallbackQuestion(session.Category, session.JobRole)
	}
	text, hint, err = g.generateWithAI(ctx, session, ordinal, previous)
	if err != nil {
		slog.Warn("AI question generation failed, using fallback pool", slog.Any("error", err), slog.String("session_id", session.ID), slog.Int("ordinal", ordinal))
		observability.QuestionsGeneratedTotal.WithLabelValues("fallback").Inc()
		return pickFallbackQuestion(session.Category, session.JobRole)
	}
	observability.QuestionsGeneratedTotal.WithLabelValues("ai").Inc()
	return text, hint
}

func (g QuestionGenerator) generateWithAI(ctx domain.Context, session domain.InterviewSession, ordinal int, previous []domain.InterviewQuestion) (string, string, error) {
	sys := questionSystemPrompt(session, ordinal, previous)
	raw, err := g.AI.ChatText(ctx, sys, "", questionTemperature)
	if err != nil {
		return "", "", fmt.Errorf("question completion: %w", err)
	}
	text := stripQuotes(raw)
	if text == "" {
		return "", "", fmt.Errorf("question completion: empty response")
	}
	rawHint, err := g.AI.ChatText(ctx, hintSystemPrompt(session.JobRole, text), "", hintTemperature)
	if err != nil {
		return "", "", fmt.Errorf("hint completion: %w", err)
	}
	return text, stripQuotes(rawHint), nil
}

// categoryPrompt returns the category-specific instruction line.
func categoryPrompt(session domain.InterviewSession, ordinal int) string {
	switch session.Category {
	case domain.CategoryTheoretical:
		return fmt.Sprintf("Generate a theoretical question #%d for a %s interview. Focus on concepts, principles, and knowledge.", ordinal, session.JobRole)
	case domain.CategoryProblemSolving:
		return fmt.Sprintf("Create a problem-solving question #%d for a %s interview. Present a realistic scenario or challenge.", ordinal, session.JobRole)
	case domain.CategoryDatabase:
		return fmt.Sprintf("Generate a database-related question #%d for a %s interview. Focus on SQL, optimization, design, or architecture.", ordinal, session.JobRole)
	case domain.CategoryMCQ:
		return fmt.Sprintf("Create a technical question #%d for a %s interview about tools, technologies, or best practices.", ordinal, session.JobRole)
	}
	return fmt.Sprintf("Generate interview question #%d for %s position", ordinal, session.JobRole)
}

func questionSystemPrompt(session domain.InterviewSession, ordinal int, previous []domain.InterviewQuestion) string {
	var b strings.Builder
	b.WriteString("You are an expert technical interviewer with 10+ years of experience.\n")
	b.WriteString(categoryPrompt(session, ordinal))
	if len(previous) > 0 {
		b.WriteString("\nMake it different from these previous questions:\n")
		for _, q := range previous {
			b.WriteString("- ")
			b.WriteString(q.Text)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nGuidelines:\n")
	fmt.Fprintf(&b, "- Make the question specific to %s\n", session.JobRole)
	fmt.Fprintf(&b, "- Ensure it's question #%d in difficulty progression\n", ordinal)
	b.WriteString("- Keep it clear, professional, and interview-appropriate\n")
	b.WriteString("- Only return the question text, nothing else\n")
	b.WriteString("- Make it unique and different from previous questions")
	return b.String()
}

func hintSystemPrompt(jobRole, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "For this %s interview question: %q\n\n", jobRole, question)
	b.WriteString("Provide a helpful hint that:\n")
	b.WriteString("- Guides the thinking process without giving away the answer\n")
	b.WriteString("- Suggests what areas to cover or approach to take\n")
	b.WriteString("- Is encouraging and constructive\n")
	b.WriteString("- Is 1-2 sentences long\n\n")
	b.WriteString("Only return the hint text, nothing else.")
	return b.String()
}

// stripQuotes trims whitespace and surrounding quote characters from model
// output.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
