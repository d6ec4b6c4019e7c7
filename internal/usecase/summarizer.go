package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// SessionSummarizer produces the one-time aggregated feedback for a completed
// session from its (question, answer, rating) triples.
type SessionSummarizer struct {
	AI domain.AIClient
}

// NewSessionSummarizer constructs a SessionSummarizer. ai may be nil.
func NewSessionSummarizer(ai domain.AIClient) SessionSummarizer {
	return SessionSummarizer{AI: ai}
}

// Summarize never fails: the AI being absent or erroring yields a templated
// summary so completion always carries non-empty overall feedback.
func (s SessionSummarizer) Summarize(ctx domain.Context, session domain.InterviewSession, answered []domain.AnsweredQuestion) string {
	if s.AI == nil {
		return fmt.Sprintf("Interview completed! You answered %d questions for the %s position.", len(answered), session.JobRole)
	}
	summary, err := s.AI.ChatText(ctx, summaryPrompt(session, answered), "", 0.5)
	if err != nil || strings.TrimSpace(summary) == "" {
		slog.Warn("AI summary failed, using templated summary", slog.Any("error", err), slog.String("session_id", session.ID))
		return fmt.Sprintf("Interview completed! You answered %d questions. Review your individual feedback for detailed insights.", len(answered))
	}
	return strings.TrimSpace(summary)
}

func summaryPrompt(session domain.InterviewSession, answered []domain.AnsweredQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this %s interview session, provide overall feedback.\n", session.JobRole)
	b.WriteString("Questions and answers:\n")
	for i, aq := range answered {
		rating := 0
		if aq.Answer.Rating != nil {
			rating = *aq.Answer.Rating
		}
		fmt.Fprintf(&b, "%d. Question: %s\n   Answer: %s\n   Rating: %d/10\n", i+1, aq.Question.Text, aq.Answer.Text, rating)
	}
	b.WriteString("Give a summary of strengths, areas for improvement, and next steps.")
	return b.String()
}
