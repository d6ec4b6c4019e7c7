package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// SessionCategory enumerates interview session categories.
type SessionCategory string

const (
	CategoryTheoretical    SessionCategory = "theoretical"
	CategoryProblemSolving SessionCategory = "problem-solving"
	CategoryDatabase       SessionCategory = "database"
	CategoryMCQ            SessionCategory = "mcq"
)

// ValidCategory reports whether c is one of the supported session categories.
func ValidCategory(c SessionCategory) bool {
	switch c {
	case CategoryTheoretical, CategoryProblemSolving, CategoryDatabase, CategoryMCQ:
		return true
	}
	return false
}

// Difficulty enumerates question difficulty tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// InterviewSession is one interview attempt by one user for one job role and
// one category.
// Invariants: CompletedAt is set at most once, only after the configured number
// of answered questions exist; OverallFeedback is empty until completion.
//go:generate mockery --name=SessionRepository --with-expecter --filename=session_repository_mock.go
//go:generate mockery --name=QuestionRepository --with-expecter --filename=question_repository_mock.go
//go:generate mockery --name=AnswerRepository --with-expecter --filename=answer_repository_mock.go
//go:generate mockery --name=UserRepository --with-expecter --filename=user_repository_mock.go
//go:generate mockery --name=AIClient --with-expecter --filename=aiclient_mock.go

type InterviewSession struct {
	ID              string
	UserID          string
	JobRole         string
	Category        SessionCategory
	CreatedAt       time.Time
	CompletedAt     *time.Time
	OverallFeedback string
}

// Completed reports whether the session has been finalized.
func (s InterviewSession) Completed() bool { return s.CompletedAt != nil }

// InterviewQuestion is one generated prompt belonging to a session. Ordinal
// is the 1-based position within the session and is unique per session
// (enforced by the store), so concurrent generation for the same slot
// collapses to a single row. Questions are never mutated after creation.
type InterviewQuestion struct {
	ID         string
	SessionID  string
	Ordinal    int
	Text       string
	Hint       string
	Difficulty Difficulty
	Category   SessionCategory
	CreatedAt  time.Time
}

// UserAnswer is the single answer to one question, together with its
// evaluation. Rating is nil only when evaluation failed entirely; when present
// it is an integer in [1,10]. At most one answer exists per question (enforced
// by a unique constraint in the store).
type UserAnswer struct {
	ID           string
	QuestionID   string
	Text         string
	Feedback     string
	Rating       *int
	Strengths    string
	Weaknesses   string
	Improvements string
	TimeTakenSec *int
	CreatedAt    time.Time
}

// User is an authenticated account owning interview sessions.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Evaluation is the structured outcome extracted from the evaluator's
// free-text response.
type Evaluation struct {
	Feedback     string
	Rating       int
	Strengths    string
	Improvements string
}

// Repositories (ports)

type SessionRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, id string) (InterviewSession, error)
	// Complete sets the completion timestamp and overall feedback only if the
	// session is not yet completed. It reports whether this call performed the
	// completion, so callers can distinguish the first completion from a
	// concurrent repeat.
	Complete(ctx Context, id string, completedAt time.Time, overallFeedback string) (bool, error)
	ListByUser(ctx Context, userID string) ([]InterviewSession, error)
}

type QuestionRepository interface {
	// Create persists the question. It returns ErrConflict when the session
	// already has a question at the same ordinal (unique constraint on
	// session_id+ordinal).
	Create(ctx Context, q InterviewQuestion) (string, error)
	Get(ctx Context, id string) (InterviewQuestion, error)
	// ListBySession returns all questions ordered by ordinal ascending.
	ListBySession(ctx Context, sessionID string) ([]InterviewQuestion, error)
	// FirstUnanswered returns the lowest-ordinal question without an answer,
	// or ErrNotFound when every question is answered.
	FirstUnanswered(ctx Context, sessionID string) (InterviewQuestion, error)
}

type AnswerRepository interface {
	// Create persists the answer. It returns ErrConflict when the question
	// already has an answer (unique constraint on question_id).
	Create(ctx Context, a UserAnswer) (string, error)
	// ListBySession returns answers for a session paired with their questions,
	// ordered by question ordinal.
	ListBySession(ctx Context, sessionID string) ([]AnsweredQuestion, error)
}

type UserRepository interface {
	Create(ctx Context, u User) (string, error)
	GetByEmail(ctx Context, email string) (User, error)
	Get(ctx Context, id string) (User, error)
}

// AnsweredQuestion pairs a question with its answer for results views and
// session summaries.
type AnsweredQuestion struct {
	Question InterviewQuestion
	Answer   UserAnswer
}

// AIClient (port)
//
// ChatText sends a system and user prompt to the external text-generation
// service and returns the raw completion text. A nil AIClient selects the
// deterministic fallback path everywhere; implementations must not be required
// for the interview flow to make progress.
type AIClient interface {
	ChatText(ctx Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Context is an alias to decouple domain signatures from std context.
type Context = context.Context
