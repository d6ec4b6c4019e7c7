package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// SessionRepo persists and loads interview sessions using a minimal pgx pool.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session and returns its id.
func (r *SessionRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO interview_sessions (id, user_id, job_role, category, created_at, overall_feedback) VALUES ($1,$2,$3,$4,$5,'')`
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := r.Pool.Exec(ctx, q, id, s.UserID, s.JobRole, s.Category, createdAt); err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	q := `SELECT id, user_id, job_role, category, created_at, completed_at, overall_feedback FROM interview_sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var s domain.InterviewSession
	if err := row.Scan(&s.ID, &s.UserID, &s.JobRole, &s.Category, &s.CreatedAt, &s.CompletedAt, &s.OverallFeedback); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	return s, nil
}

// Complete performs the idempotent completion check-and-set. It reports true
// only for the call that actually set completed_at.
func (r *SessionRepo) Complete(ctx domain.Context, id string, completedAt time.Time, overallFeedback string) (bool, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Complete")
	defer span.End()
	q := `UPDATE interview_sessions SET completed_at=$2, overall_feedback=$3 WHERE id=$1 AND completed_at IS NULL`
	tag, err := r.Pool.Exec(ctx, q, id, completedAt, overallFeedback)
	if err != nil {
		return false, fmt.Errorf("op=session.complete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns the user's sessions, most recent first.
func (r *SessionRepo) ListByUser(ctx domain.Context, userID string) ([]domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.ListByUser")
	defer span.End()
	q := `SELECT id, user_id, job_role, category, created_at, completed_at, overall_feedback FROM interview_sessions WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	defer rows.Close()
	var out []domain.InterviewSession
	for rows.Next() {
		var s domain.InterviewSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.JobRole, &s.Category, &s.CreatedAt, &s.CompletedAt, &s.OverallFeedback); err != nil {
			return nil, fmt.Errorf("op=session.list: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	return out, nil
}
