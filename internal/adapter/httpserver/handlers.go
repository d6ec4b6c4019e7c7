package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

// AnswerLimiter throttles answer submissions per user. A nil limiter allows
// everything.
type AnswerLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Interviews usecase.InterviewService
	Users      domain.UserRepository
	Sessions   *SessionManager
	Limiter    AnswerLimiter
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, interviews usecase.InterviewService, users domain.UserRepository, sessions *SessionManager, limiter AnswerLimiter, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Interviews: interviews, Users: users, Sessions: sessions, Limiter: limiter, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// decodeValid decodes a JSON body into dst and runs struct validation.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// DTOs

type sessionDTO struct {
	ID              string     `json:"id"`
	JobRole         string     `json:"job_role"`
	Category        string     `json:"category"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	OverallFeedback string     `json:"overall_feedback,omitempty"`
}

type questionDTO struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Hint       string `json:"hint,omitempty"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

type answerDTO struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	Text         string `json:"text"`
	Feedback     string `json:"feedback"`
	Rating       *int   `json:"rating"`
	Strengths    string `json:"strengths,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	TimeTakenSec *int   `json:"time_taken_sec,omitempty"`
}

type answeredDTO struct {
	Question questionDTO `json:"question"`
	Answer   answerDTO   `json:"answer"`
}

type sessionViewDTO struct {
	Session         sessionDTO   `json:"session"`
	Completed       bool         `json:"completed"`
	CurrentQuestion *questionDTO `json:"current_question,omitempty"`
	LastAnswered    *answeredDTO `json:"last_answered,omitempty"`
	QuestionNumber  int          `json:"question_number"`
	TotalQuestions  int          `json:"total_questions"`
	ProgressPercent float64      `json:"progress_percent"`
}

type resultsDTO struct {
	Session       sessionDTO    `json:"session"`
	Answers       []answeredDTO `json:"answers"`
	AverageRating float64       `json:"average_rating"`
	StrongAnswers int           `json:"strong_answers"`
	WeakAnswers   int           `json:"weak_answers"`
}

func toSessionDTO(s domain.InterviewSession) sessionDTO {
	return sessionDTO{
		ID:              s.ID,
		JobRole:         s.JobRole,
		Category:        string(s.Category),
		CreatedAt:       s.CreatedAt,
		CompletedAt:     s.CompletedAt,
		OverallFeedback: s.OverallFeedback,
	}
}

func toQuestionDTO(q domain.InterviewQuestion) questionDTO {
	return questionDTO{ID: q.ID, Text: q.Text, Hint: q.Hint, Difficulty: string(q.Difficulty), Category: string(q.Category)}
}

func toAnswerDTO(a domain.UserAnswer) answerDTO {
	return answerDTO{
		ID:           a.ID,
		QuestionID:   a.QuestionID,
		Text:         a.Text,
		Feedback:     a.Feedback,
		Rating:       a.Rating,
		Strengths:    a.Strengths,
		Improvements: a.Improvements,
		TimeTakenSec: a.TimeTakenSec,
	}
}

func toAnsweredDTO(aq domain.AnsweredQuestion) answeredDTO {
	return answeredDTO{Question: toQuestionDTO(aq.Question), Answer: toAnswerDTO(aq.Answer)}
}

func toViewDTO(v usecase.SessionView) sessionViewDTO {
	out := sessionViewDTO{
		Session:         toSessionDTO(v.Session),
		Completed:       v.Completed,
		QuestionNumber:  v.QuestionNumber,
		TotalQuestions:  v.TotalQuestions,
		ProgressPercent: v.ProgressPercent,
	}
	if v.CurrentQuestion != nil {
		q := toQuestionDTO(*v.CurrentQuestion)
		out.CurrentQuestion = &q
	}
	if v.LastAnswered != nil {
		aq := toAnsweredDTO(*v.LastAnswered)
		out.LastAnswered = &aq
	}
	return out
}

// Auth handlers

// RegisterHandler creates a new user account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email" validate:"required,email,max=254"`
			Password string `json:"password" validate:"required,min=8,max=128"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		hash, err := HashPassword(req.Password)
		if err != nil {
			writeError(w, r, fmt.Errorf("hash password: %w", err), nil)
			return
		}
		u := domain.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		id, err := s.Users.Create(r.Context(), u)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				writeError(w, r, fmt.Errorf("%w: email already registered", domain.ErrConflict), nil)
				return
			}
			writeError(w, r, fmt.Errorf("register: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id, "email": u.Email})
	}
}

// LoginHandler verifies credentials and issues a session cookie.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		u, err := s.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil || !VerifyPassword(req.Password, u.PasswordHash) {
			// Same response for unknown email and wrong password.
			writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{Code: "UNAUTHENTICATED", Message: "invalid credentials"}})
			return
		}
		s.Sessions.SetSessionCookie(w, s.Sessions.CreateSession(u.ID))
		writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "email": u.Email})
	}
}

// LogoutHandler clears the session cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.Sessions.ClearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Interview handlers

// StartInterviewHandler creates a new interview session.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobRole  string `json:"job_role" validate:"required,max=200"`
			Category string `json:"category" validate:"required"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		sess, err := s.Interviews.Start(r.Context(), UserFrom(r), req.JobRole, domain.SessionCategory(req.Category))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Location", "/v1/interviews/"+sess.ID)
		writeJSON(w, http.StatusCreated, toSessionDTO(sess))
	}
}

// GetInterviewHandler presents the session state: the pending question or the
// completion summary.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.Interviews.View(r.Context(), UserFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toViewDTO(view))
	}
}

// SubmitAnswerHandler evaluates an answer and redirects back to the session
// view, which advances to the next question.
func (s *Server) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID   string `json:"question_id" validate:"required"`
			AnswerText   string `json:"answer_text" validate:"required,max=20000"`
			TimeTakenSec *int   `json:"time_taken_sec" validate:"omitempty,min=0"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		userID := UserFrom(r)
		if !s.allowAnswer(w, r, userID) {
			return
		}
		sessionID := chi.URLParam(r, "id")
		if _, err := s.Interviews.SubmitAnswer(r.Context(), userID, sessionID, req.QuestionID, req.AnswerText, req.TimeTakenSec); err != nil {
			writeError(w, r, err, nil)
			return
		}
		http.Redirect(w, r, "/v1/interviews/"+sessionID, http.StatusSeeOther)
	}
}

// QuickAnswerHandler evaluates an answer addressed by question id alone and
// returns the evaluation inline.
func (s *Server) QuickAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id" validate:"required"`
			AnswerText string `json:"answer_text" validate:"required,max=20000"`
		}
		if !decodeValid(w, r, &req) {
			return
		}
		userID := UserFrom(r)
		if !s.allowAnswer(w, r, userID) {
			return
		}
		ans, err := s.Interviews.QuickAnswer(r.Context(), userID, req.QuestionID, req.AnswerText)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toAnswerDTO(ans))
	}
}

// GetResultsHandler returns the aggregate results of a session.
func (s *Server) GetResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.Interviews.Results(r.Context(), UserFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := resultsDTO{
			Session:       toSessionDTO(res.Session),
			Answers:       make([]answeredDTO, 0, len(res.Answered)),
			AverageRating: res.AverageRating,
			StrongAnswers: res.StrongAnswers,
			WeakAnswers:   res.WeakAnswers,
		}
		for _, aq := range res.Answered {
			out.Answers = append(out.Answers, toAnsweredDTO(aq))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ListInterviewsHandler lists the user's sessions, most recent first.
func (s *Server) ListInterviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Interviews.History(r.Context(), UserFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]sessionDTO, 0, len(sessions))
		for _, sess := range sessions {
			out = append(out, toSessionDTO(sess))
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
	}
}

// allowAnswer applies the per-user submission limiter. Limiter errors fail
// open: a broken Redis must not block interviews.
func (s *Server) allowAnswer(w http.ResponseWriter, r *http.Request, userID string) bool {
	if s.Limiter == nil {
		return true
	}
	ok, err := s.Limiter.Allow(r.Context(), "answers:"+userID)
	if err != nil {
		LoggerFrom(r).Warn("answer limiter unavailable", slog.Any("error", err))
		return true
	}
	if !ok {
		writeError(w, r, fmt.Errorf("%w: too many answer submissions", domain.ErrRateLimited), nil)
		return false
	}
	return true
}

// ReadyzHandler probes the DB and, when configured, Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
