package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// AnswerRepo persists and loads user answers. The question_id unique
// constraint is the serialization point for double submissions.
type AnswerRepo struct{ Pool PgxPool }

// NewAnswerRepo constructs an AnswerRepo with the given pool.
func NewAnswerRepo(p PgxPool) *AnswerRepo { return &AnswerRepo{Pool: p} }

// Create inserts the answer, returning ErrConflict when the question already
// has one.
func (r *AnswerRepo) Create(ctx domain.Context, a domain.UserAnswer) (string, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.Create")
	defer span.End()
	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}
	sql := `INSERT INTO user_answers (id, question_id, text, feedback, rating, strengths, weaknesses, improvements, time_taken_sec, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.Pool.Exec(ctx, sql, id, a.QuestionID, a.Text, a.Feedback, a.Rating, a.Strengths, a.Weaknesses, a.Improvements, a.TimeTakenSec, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("op=answer.create: %w", domain.ErrConflict)
		}
		return "", fmt.Errorf("op=answer.create: %w", err)
	}
	return id, nil
}

// ListBySession returns question/answer pairs for the session in ordinal
// order.
func (r *AnswerRepo) ListBySession(ctx domain.Context, sessionID string) ([]domain.AnsweredQuestion, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.ListBySession")
	defer span.End()
	sql := `SELECT q.id, q.session_id, q.ordinal, q.text, q.hint, q.difficulty, q.category, q.created_at,
		a.id, a.question_id, a.text, a.feedback, a.rating, a.strengths, a.weaknesses, a.improvements, a.time_taken_sec, a.created_at
		FROM interview_questions q
		JOIN user_answers a ON a.question_id = q.id
		WHERE q.session_id=$1
		ORDER BY q.ordinal ASC`
	rows, err := r.Pool.Query(ctx, sql, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=answer.list: %w", err)
	}
	defer rows.Close()
	var out []domain.AnsweredQuestion
	for rows.Next() {
		var aq domain.AnsweredQuestion
		q := &aq.Question
		a := &aq.Answer
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Ordinal, &q.Text, &q.Hint, &q.Difficulty, &q.Category, &q.CreatedAt,
			&a.ID, &a.QuestionID, &a.Text, &a.Feedback, &a.Rating, &a.Strengths, &a.Weaknesses, &a.Improvements, &a.TimeTakenSec, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=answer.list: %w", err)
		}
		out = append(out, aq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=answer.list: %w", err)
	}
	return out, nil
}
