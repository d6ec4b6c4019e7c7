package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/domain/mocks"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

func testSession() domain.InterviewSession {
	return domain.InterviewSession{
		ID:       "sess-1",
		UserID:   "user-1",
		JobRole:  "Backend Engineer",
		Category: domain.CategoryDatabase,
	}
}

func TestGenerate_NilAI_UsesFallbackPool(t *testing.T) {
	t.Parallel()
	questions := &mocks.MockQuestionRepository{}
	questions.On("Create", mock.Anything, mock.MatchedBy(func(q domain.InterviewQuestion) bool {
		return q.SessionID == "sess-1" && q.Ordinal == 1 && q.Text != "" && q.Category == domain.CategoryDatabase
	})).Return("q-1", nil)

	gen := usecase.NewQuestionGenerator(questions, nil)
	q, err := gen.Generate(context.Background(), testSession(), 1)
	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	assert.NotEmpty(t, q.Text)
	questions.AssertExpectations(t)
}

func TestGenerate_DifficultyProgression(t *testing.T) {
	t.Parallel()
	want := map[int]domain.Difficulty{
		1: domain.DifficultyEasy,
		2: domain.DifficultyEasy,
		3: domain.DifficultyMedium,
		4: domain.DifficultyMedium,
		5: domain.DifficultyHard,
		6: domain.DifficultyMedium,
	}
	questions := &mocks.MockQuestionRepository{}
	questions.On("Create", mock.Anything, mock.Anything).Return("q-x", nil)
	gen := usecase.NewQuestionGenerator(questions, nil)

	for ordinal, difficulty := range want {
		q, err := gen.Generate(context.Background(), testSession(), ordinal)
		require.NoError(t, err)
		assert.Equal(t, difficulty, q.Difficulty, "ordinal %d", ordinal)
	}
}

func TestGenerate_AISuccess(t *testing.T) {
	t.Parallel()
	questions := &mocks.MockQuestionRepository{}
	questions.On("ListBySession", mock.Anything, "sess-1").Return([]domain.InterviewQuestion{}, nil)
	questions.On("Create", mock.Anything, mock.MatchedBy(func(q domain.InterviewQuestion) bool {
		return q.Text == "Explain MVCC in PostgreSQL." && q.Hint == "Think about snapshots."
	})).Return("q-1", nil)

	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.8).Return(` "Explain MVCC in PostgreSQL." `, nil).Once()
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.7).Return("Think about snapshots.", nil).Once()

	gen := usecase.NewQuestionGenerator(questions, ai)
	q, err := gen.Generate(context.Background(), testSession(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Explain MVCC in PostgreSQL.", q.Text)
	assert.Equal(t, "Think about snapshots.", q.Hint)
	assert.Equal(t, domain.DifficultyMedium, q.Difficulty)
	ai.AssertExpectations(t)
	questions.AssertExpectations(t)
}

func TestGenerate_AvoidsRepeatingPreviousQuestions(t *testing.T) {
	t.Parallel()
	previous := []domain.InterviewQuestion{{Text: "What is an index?"}}
	questions := &mocks.MockQuestionRepository{}
	questions.On("ListBySession", mock.Anything, "sess-1").Return(previous, nil)
	questions.On("Create", mock.Anything, mock.Anything).Return("q-2", nil)

	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.MatchedBy(func(sys string) bool {
		return strings.Contains(sys, "What is an index?")
	}), "", 0.8).Return("Describe join strategies.", nil).Once()
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.7).Return("Consider hash vs merge.", nil).Once()

	gen := usecase.NewQuestionGenerator(questions, ai)
	_, err := gen.Generate(context.Background(), testSession(), 2)
	require.NoError(t, err)
	ai.AssertExpectations(t)
}

func TestGenerate_AIError_FallsBackToPool(t *testing.T) {
	t.Parallel()
	questions := &mocks.MockQuestionRepository{}
	questions.On("ListBySession", mock.Anything, "sess-1").Return([]domain.InterviewQuestion{}, nil)
	questions.On("Create", mock.Anything, mock.MatchedBy(func(q domain.InterviewQuestion) bool {
		return q.Text != "" && q.Difficulty == domain.DifficultyEasy
	})).Return("q-1", nil)

	ai := &mocks.MockAIClient{}
	ai.On("ChatText", mock.Anything, mock.Anything, "", 0.8).Return("", errors.New("provider down"))

	gen := usecase.NewQuestionGenerator(questions, ai)
	q, err := gen.Generate(context.Background(), testSession(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, q.Text)
	questions.AssertExpectations(t)
}

func TestGenerate_PersistError(t *testing.T) {
	t.Parallel()
	questions := &mocks.MockQuestionRepository{}
	questions.On("Create", mock.Anything, mock.Anything).Return("", errors.New("db down"))

	gen := usecase.NewQuestionGenerator(questions, nil)
	_, err := gen.Generate(context.Background(), testSession(), 1)
	require.Error(t, err)
}

func TestGenerate_OrdinalTaken_SurfacesConflict(t *testing.T) {
	t.Parallel()
	questions := &mocks.MockQuestionRepository{}
	questions.On("Create", mock.Anything, mock.MatchedBy(func(q domain.InterviewQuestion) bool {
		return q.Ordinal == 2
	})).Return("", domain.ErrConflict)

	gen := usecase.NewQuestionGenerator(questions, nil)
	_, err := gen.Generate(context.Background(), testSession(), 2)
	require.ErrorIs(t, err, domain.ErrConflict)
}
