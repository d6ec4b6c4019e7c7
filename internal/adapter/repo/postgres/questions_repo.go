package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// QuestionRepo persists and loads interview questions. The session_id+ordinal
// unique constraint is the serialization point for concurrent generation of
// the same question slot.
type QuestionRepo struct{ Pool PgxPool }

// NewQuestionRepo constructs a QuestionRepo with the given pool.
func NewQuestionRepo(p PgxPool) *QuestionRepo { return &QuestionRepo{Pool: p} }

const questionColumns = `id, session_id, ordinal, text, hint, difficulty, category, created_at`

// Create inserts a new question and returns its id. It returns ErrConflict
// when the session already has a question at the same ordinal.
func (r *QuestionRepo) Create(ctx domain.Context, q domain.InterviewQuestion) (string, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Create")
	defer span.End()
	id := q.ID
	if id == "" {
		id = uuid.New().String()
	}
	sql := `INSERT INTO interview_questions (id, session_id, ordinal, text, hint, difficulty, category, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := r.Pool.Exec(ctx, sql, id, q.SessionID, q.Ordinal, q.Text, q.Hint, q.Difficulty, q.Category, q.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("op=question.create: %w", domain.ErrConflict)
		}
		return "", fmt.Errorf("op=question.create: %w", err)
	}
	return id, nil
}

// Get loads a question by id.
func (r *QuestionRepo) Get(ctx domain.Context, id string) (domain.InterviewQuestion, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Get")
	defer span.End()
	sql := `SELECT ` + questionColumns + ` FROM interview_questions WHERE id=$1`
	var q domain.InterviewQuestion
	if err := r.Pool.QueryRow(ctx, sql, id).Scan(&q.ID, &q.SessionID, &q.Ordinal, &q.Text, &q.Hint, &q.Difficulty, &q.Category, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewQuestion{}, fmt.Errorf("op=question.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewQuestion{}, fmt.Errorf("op=question.get: %w", err)
	}
	return q, nil
}

// ListBySession returns all of a session's questions, ordinal ascending.
func (r *QuestionRepo) ListBySession(ctx domain.Context, sessionID string) ([]domain.InterviewQuestion, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.ListBySession")
	defer span.End()
	sql := `SELECT ` + questionColumns + ` FROM interview_questions WHERE session_id=$1 ORDER BY ordinal ASC`
	rows, err := r.Pool.Query(ctx, sql, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=question.list: %w", err)
	}
	defer rows.Close()
	var out []domain.InterviewQuestion
	for rows.Next() {
		var q domain.InterviewQuestion
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Ordinal, &q.Text, &q.Hint, &q.Difficulty, &q.Category, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=question.list: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=question.list: %w", err)
	}
	return out, nil
}

// FirstUnanswered returns the lowest-ordinal question in the session without
// an answer, or ErrNotFound when none exists.
func (r *QuestionRepo) FirstUnanswered(ctx domain.Context, sessionID string) (domain.InterviewQuestion, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.FirstUnanswered")
	defer span.End()
	sql := `SELECT q.id, q.session_id, q.ordinal, q.text, q.hint, q.difficulty, q.category, q.created_at
		FROM interview_questions q
		LEFT JOIN user_answers a ON a.question_id = q.id
		WHERE q.session_id=$1 AND a.id IS NULL
		ORDER BY q.ordinal ASC
		LIMIT 1`
	var q domain.InterviewQuestion
	if err := r.Pool.QueryRow(ctx, sql, sessionID).Scan(&q.ID, &q.SessionID, &q.Ordinal, &q.Text, &q.Hint, &q.Difficulty, &q.Category, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewQuestion{}, fmt.Errorf("op=question.first_unanswered: %w", domain.ErrNotFound)
		}
		return domain.InterviewQuestion{}, fmt.Errorf("op=question.first_unanswered: %w", err)
	}
	return q, nil
}
