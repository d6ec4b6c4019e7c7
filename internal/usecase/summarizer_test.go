package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/domain/mocks"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

func answeredFixture(n int) []domain.AnsweredQuestion {
	out := make([]domain.AnsweredQuestion, n)
	for i := range out {
		rating := 6
		out[i] = domain.AnsweredQuestion{
			Question: domain.InterviewQuestion{Text: "question"},
			Answer:   domain.UserAnswer{Text: "answer", Rating: &rating},
		}
	}
	return out
}

func TestSummarize_NilAI_TemplatedSummary(t *testing.T) {
	t.Parallel()
	sum := usecase.NewSessionSummarizer(nil)
	got := sum.Summarize(context.Background(), testSession(), answeredFixture(5))
	assert.Equal(t, "Interview completed! You answered 5 questions for the Backend Engineer position.", got)
}

func TestSummarize_AISuccess(t *testing.T) {
	t.Parallel()
	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.5).Return("  Strong session overall.  ", nil)

	sum := usecase.NewSessionSummarizer(ai)
	got := sum.Summarize(context.Background(), testSession(), answeredFixture(5))
	assert.Equal(t, "Strong session overall.", got)
}

func TestSummarize_AIFailure_TemplatedSummary(t *testing.T) {
	t.Parallel()
	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.5).Return("", errors.New("provider down"))

	sum := usecase.NewSessionSummarizer(ai)
	got := sum.Summarize(context.Background(), testSession(), answeredFixture(5))
	assert.Equal(t, "Interview completed! You answered 5 questions. Review your individual feedback for detailed insights.", got)
}

func TestSummarize_AIEmptyResponse_TemplatedSummary(t *testing.T) {
	t.Parallel()
	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.5).Return("   ", nil)

	sum := usecase.NewSessionSummarizer(ai)
	got := sum.Summarize(context.Background(), testSession(), answeredFixture(3))
	assert.Contains(t, got, "You answered 3 questions.")
}
