// Package usecase contains application business logic services.
package usecase

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// Generator produces the next question for a session.
type Generator interface {
	Generate(ctx domain.Context, session domain.InterviewSession, ordinal int) (domain.InterviewQuestion, error)
}

// Evaluator scores and persists an answer to a question.
type Evaluator interface {
	Evaluate(ctx domain.Context, session domain.InterviewSession, question domain.InterviewQuestion, answerText string, timeTakenSec *int) (domain.UserAnswer, error)
}

// Summarizer produces the session-level aggregated feedback.
type Summarizer interface {
	Summarize(ctx domain.Context, session domain.InterviewSession, answered []domain.AnsweredQuestion) string
}

// InterviewService orchestrates the interview session loop: show the pending
// question, evaluate submissions, and finalize the session once enough answers
// exist.
type InterviewService struct {
	Sessions  domain.SessionRepository
	Questions domain.QuestionRepository
	Answers   domain.AnswerRepository

	Generator  Generator
	Evaluator  Evaluator
	Summarizer Summarizer

	// QuestionsPerSession is the fixed interview length (answered questions
	// needed for completion).
	QuestionsPerSession int
}

// NewInterviewService constructs an InterviewService with its dependencies.
func NewInterviewService(s domain.SessionRepository, q domain.QuestionRepository, a domain.AnswerRepository, gen Generator, ev Evaluator, sum Summarizer, questionsPerSession int) InterviewService {
	if questionsPerSession <= 0 {
		questionsPerSession = 5
	}
	return InterviewService{Sessions: s, Questions: q, Answers: a, Generator: gen, Evaluator: ev, Summarizer: sum, QuestionsPerSession: questionsPerSession}
}

// SessionView is what the session endpoint presents: either the current
// question with progress, or a completed marker pointing at results.
type SessionView struct {
	Session         domain.InterviewSession
	Completed       bool
	CurrentQuestion *domain.InterviewQuestion
	LastAnswered    *domain.AnsweredQuestion
	QuestionNumber  int
	TotalQuestions  int
	ProgressPercent float64
}

// SessionResults is the aggregate view of a session.
type SessionResults struct {
	Session       domain.InterviewSession
	Answered      []domain.AnsweredQuestion
	AverageRating float64
	StrongAnswers int
	WeakAnswers   int
}

// Start creates a new interview session for the user.
func (s InterviewService) Start(ctx domain.Context, userID, jobRole string, category domain.SessionCategory) (domain.InterviewSession, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return domain.InterviewSession{}, fmt.Errorf("%w: job role required", domain.ErrInvalidArgument)
	}
	if !domain.ValidCategory(category) {
		return domain.InterviewSession{}, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidArgument, category)
	}
	sess := domain.InterviewSession{
		UserID:    userID,
		JobRole:   jobRole,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: %w", err)
	}
	sess.ID = id
	observability.SessionsStartedTotal.Inc()
	return sess, nil
}

// View drives the session state machine for one request and returns what to
// present. Completed sessions short-circuit without touching the generator or
// the summarizer again.
func (s InterviewService) View(ctx domain.Context, userID, sessionID string) (SessionView, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	if sess.Completed() {
		return s.completedView(sess), nil
	}
	answered, err := s.Answers.ListBySession(ctx, sess.ID)
	if err != nil {
		return SessionView{}, fmt.Errorf("op=interview.view: %w", err)
	}
	if len(answered) >= s.QuestionsPerSession {
		return s.complete(ctx, sess, answered)
	}

	view := SessionView{
		Session:         sess,
		QuestionNumber:  len(answered) + 1,
		TotalQuestions:  s.QuestionsPerSession,
		ProgressPercent: float64(len(answered)) / float64(s.QuestionsPerSession) * 100,
	}
	if len(answered) > 0 {
		last := answered[len(answered)-1]
		view.LastAnswered = &last
	}

	q, err := s.Questions.FirstUnanswered(ctx, sess.ID)
	switch {
	case err == nil:
		view.CurrentQuestion = &q
	case errors.Is(err, domain.ErrNotFound):
		// Every existing question is answered (or none exist yet); generate
		// for the next ordinal. The question store's session_id+ordinal
		// unique constraint serializes concurrent views of the same slot:
		// the loser gets ErrConflict and serves the winner's question, so a
		// session never holds more than one unanswered question.
		q, err = s.Generator.Generate(ctx, sess, len(answered)+1)
		if errors.Is(err, domain.ErrConflict) {
			q, err = s.Questions.FirstUnanswered(ctx, sess.ID)
		}
		if err != nil {
			return SessionView{}, fmt.Errorf("op=interview.view: %w", err)
		}
		view.CurrentQuestion = &q
	default:
		return SessionView{}, fmt.Errorf("op=interview.view: %w", err)
	}
	return view, nil
}

// complete finalizes the session exactly once. The store's conditional update
// makes completion idempotent under concurrent requests; the loser of the race
// simply re-reads the winner's feedback.
func (s InterviewService) complete(ctx domain.Context, sess domain.InterviewSession, answered []domain.AnsweredQuestion) (SessionView, error) {
	feedback := s.Summarizer.Summarize(ctx, sess, answered)
	now := time.Now().UTC()
	won, err := s.Sessions.Complete(ctx, sess.ID, now, feedback)
	if err != nil {
		return SessionView{}, fmt.Errorf("op=interview.complete: %w", err)
	}
	if won {
		observability.SessionsCompletedTotal.Inc()
		sess.CompletedAt = &now
		sess.OverallFeedback = feedback
	} else if sess, err = s.Sessions.Get(ctx, sess.ID); err != nil {
		return SessionView{}, fmt.Errorf("op=interview.complete: %w", err)
	}
	return s.completedView(sess), nil
}

func (s InterviewService) completedView(sess domain.InterviewSession) SessionView {
	return SessionView{
		Session:         sess,
		Completed:       true,
		TotalQuestions:  s.QuestionsPerSession,
		QuestionNumber:  s.QuestionsPerSession,
		ProgressPercent: 100,
	}
}

// SubmitAnswer evaluates and records the answer to a pending question. The
// answer store's unique constraint serializes double submissions; the second
// one surfaces ErrConflict.
func (s InterviewService) SubmitAnswer(ctx domain.Context, userID, sessionID, questionID, answerText string, timeTakenSec *int) (domain.UserAnswer, error) {
	answerText = textx.SanitizeText(answerText)
	if answerText == "" {
		return domain.UserAnswer{}, fmt.Errorf("%w: answer text required", domain.ErrInvalidArgument)
	}
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return domain.UserAnswer{}, err
	}
	if sess.Completed() {
		return domain.UserAnswer{}, fmt.Errorf("%w: session already completed", domain.ErrConflict)
	}
	q, err := s.Questions.Get(ctx, questionID)
	if err != nil {
		return domain.UserAnswer{}, fmt.Errorf("op=interview.submit: %w", err)
	}
	if q.SessionID != sess.ID {
		return domain.UserAnswer{}, fmt.Errorf("%w: question not part of session", domain.ErrNotFound)
	}
	return s.Evaluator.Evaluate(ctx, sess, q, answerText, timeTakenSec)
}

// QuickAnswer is the asynchronous submission path: it resolves the session
// from the question and returns the evaluation directly.
func (s InterviewService) QuickAnswer(ctx domain.Context, userID, questionID, answerText string) (domain.UserAnswer, error) {
	answerText = textx.SanitizeText(answerText)
	if answerText == "" {
		return domain.UserAnswer{}, fmt.Errorf("%w: answer text required", domain.ErrInvalidArgument)
	}
	q, err := s.Questions.Get(ctx, questionID)
	if err != nil {
		return domain.UserAnswer{}, fmt.Errorf("op=interview.quick_answer: %w", err)
	}
	sess, err := s.ownedSession(ctx, userID, q.SessionID)
	if err != nil {
		return domain.UserAnswer{}, err
	}
	if sess.Completed() {
		return domain.UserAnswer{}, fmt.Errorf("%w: session already completed", domain.ErrConflict)
	}
	return s.Evaluator.Evaluate(ctx, sess, q, answerText, nil)
}

// Results returns the aggregate view for a session.
func (s InterviewService) Results(ctx domain.Context, userID, sessionID string) (SessionResults, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionResults{}, err
	}
	answered, err := s.Answers.ListBySession(ctx, sess.ID)
	if err != nil {
		return SessionResults{}, fmt.Errorf("op=interview.results: %w", err)
	}
	res := SessionResults{Session: sess, Answered: answered}
	var sum, n int
	for _, aq := range answered {
		if aq.Answer.Rating == nil {
			continue
		}
		r := *aq.Answer.Rating
		sum += r
		n++
		if r >= 7 {
			res.StrongAnswers++
		}
		if r < 5 {
			res.WeakAnswers++
		}
	}
	if n > 0 {
		res.AverageRating = math.Round(float64(sum)/float64(n)*10) / 10
	}
	return res, nil
}

// History lists the user's sessions, most recent first.
func (s InterviewService) History(ctx domain.Context, userID string) ([]domain.InterviewSession, error) {
	sessions, err := s.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("op=interview.history: %w", err)
	}
	return sessions, nil
}

// ownedSession loads the session and enforces ownership. A foreign session is
// indistinguishable from a missing one.
func (s InterviewService) ownedSession(ctx domain.Context, userID, sessionID string) (domain.InterviewSession, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.session: %w", err)
	}
	if sess.UserID != userID {
		return domain.InterviewSession{}, fmt.Errorf("%w: session", domain.ErrNotFound)
	}
	return sess, nil
}
