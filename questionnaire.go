package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/questionnaire/internal/logging"
	"github.com/aretw0/questionnaire/pkg/adapters/memory"
	"github.com/aretw0/questionnaire/pkg/authoring"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/flow"
	"github.com/aretw0/questionnaire/pkg/ports"
	"github.com/aretw0/questionnaire/pkg/session"
	"github.com/google/uuid"
)

// DefaultQuestionnaire is the questionnaire ID used when none is given.
const DefaultQuestionnaire = "default"

// Stores groups the persistence ports a Service depends on.
// Nil stores fall back to in-memory implementations.
type Stores struct {
	Questions ports.QuestionStore
	Sessions  ports.SessionStore
	Answers   ports.AnswerStore
	Locker    ports.DistributedLocker // optional
}

// Service drives the configuration and flow engines against persistent stores.
// Every call rehydrates an engine, applies one operation and saves the result
// while holding the lock of the questionnaire or session it touches.
type Service struct {
	questions ports.QuestionStore
	answers   ports.AnswerStore
	sessions  *session.Manager

	hooks        domain.Hooks
	logger       *slog.Logger
	newID        func() string
	newSessionID func() string
	now          func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger for the service and the engines it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers lifecycle observers on every engine the service builds.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithIDGenerator replaces the question ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithSessionIDGenerator replaces the session ID generator.
func WithSessionIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newSessionID = gen
		}
	}
}

// WithClock replaces time.Now for session and answer timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service over the given stores.
func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		questions:    stores.Questions,
		answers:      stores.Answers,
		logger:       logging.NewNop(),
		newSessionID: uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.questions == nil {
		s.questions = memory.NewQuestionStore()
	}
	if s.answers == nil {
		s.answers = memory.NewAnswerStore()
	}
	sessions := stores.Sessions
	if sessions == nil {
		sessions = memory.NewSessionStore()
	}

	managerOpts := []session.Option{session.WithLogger(s.logger)}
	if stores.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(stores.Locker))
	}
	s.sessions = session.NewManager(sessions, managerOpts...)
	return s
}

// Sessions exposes the session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

func questionnaireKey(qid string) string { return "questionnaire:" + qid }

// load returns the stored list, treating a missing questionnaire as empty.
func (s *Service) load(ctx context.Context, qid string) ([]domain.Question, error) {
	questions, err := s.questions.Load(ctx, qid)
	if errors.Is(err, domain.ErrQuestionnaireNotFound) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire %s: %w", qid, err)
	}
	return questions, nil
}

func (s *Service) engine(initial []domain.Question) (*authoring.Engine, error) {
	opts := []authoring.Option{
		authoring.WithHooks(s.hooks),
		authoring.WithLogger(s.logger),
	}
	if s.newID != nil {
		opts = append(opts, authoring.WithIDGenerator(s.newID))
	}
	return authoring.New(initial, opts...)
}

// mutate runs fn against a rehydrated engine and saves the list when fn succeeds.
func (s *Service) mutate(ctx context.Context, qid string, fn func(*authoring.Engine) error) error {
	return s.sessions.WithLock(ctx, questionnaireKey(qid), func(ctx context.Context) error {
		current, err := s.load(ctx, qid)
		if err != nil {
			return err
		}
		eng, err := s.engine(current)
		if err != nil {
			return fmt.Errorf("stored questionnaire %s is invalid: %w", qid, err)
		}
		if err := fn(eng); err != nil {
			return err
		}
		if err := s.questions.Save(ctx, qid, eng.GetQuestions()); err != nil {
			return fmt.Errorf("failed to save questionnaire %s: %w", qid, err)
		}
		return nil
	})
}

// Questions returns the ordered list of a questionnaire. A questionnaire that
// was never saved is empty.
func (s *Service) Questions(ctx context.Context, qid string) ([]domain.Question, error) {
	return s.load(ctx, qid)
}

// Questionnaires lists the stored questionnaire IDs.
func (s *Service) Questionnaires(ctx context.Context) ([]string, error) {
	return s.questions.List(ctx)
}

// ReplaceQuestions stores a whole list as-is once it passes the entity invariants.
func (s *Service) ReplaceQuestions(ctx context.Context, qid string, questions []domain.Question) error {
	eng, err := s.engine(questions)
	if err != nil {
		return err
	}
	return s.sessions.WithLock(ctx, questionnaireKey(qid), func(ctx context.Context) error {
		if err := s.questions.Save(ctx, qid, eng.GetQuestions()); err != nil {
			return fmt.Errorf("failed to save questionnaire %s: %w", qid, err)
		}
		s.logger.Info("Questionnaire replaced", "questionnaire_id", qid, "count", eng.Len())
		return nil
	})
}

// AddQuestion appends a question built from d.
func (s *Service) AddQuestion(ctx context.Context, qid string, d domain.Draft) (domain.Question, error) {
	var added domain.Question
	err := s.mutate(ctx, qid, func(e *authoring.Engine) error {
		var err error
		added, err = e.AddQuestion(d)
		return err
	})
	return added, err
}

// EditQuestion merges p into the question with the given ID.
// Unknown IDs return domain.ErrQuestionNotFound.
func (s *Service) EditQuestion(ctx context.Context, qid, id string, p domain.Patch) error {
	return s.mutate(ctx, qid, func(e *authoring.Engine) error {
		if _, ok := e.Question(id); !ok {
			return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
		}
		return e.EditQuestion(id, p)
	})
}

// DeleteQuestion removes the question with the given ID.
// Unknown IDs return domain.ErrQuestionNotFound.
func (s *Service) DeleteQuestion(ctx context.Context, qid, id string) error {
	return s.mutate(ctx, qid, func(e *authoring.Engine) error {
		if _, ok := e.Question(id); !ok {
			return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
		}
		e.DeleteQuestion(id)
		return nil
	})
}

// ReorderQuestions moves the question at from to position to.
func (s *Service) ReorderQuestions(ctx context.Context, qid string, from, to int) error {
	return s.mutate(ctx, qid, func(e *authoring.Engine) error {
		return e.ReorderQuestions(from, to)
	})
}

// Seed replaces the questionnaire with the demo questions.
// A non-empty questionnaire is left alone unless force is set.
func (s *Service) Seed(ctx context.Context, qid string, force bool) ([]domain.Question, error) {
	var seeded []domain.Question
	err := s.mutate(ctx, qid, func(e *authoring.Engine) error {
		if e.Len() > 0 && !force {
			seeded = e.GetQuestions()
			return nil
		}
		for _, q := range e.GetQuestions() {
			e.DeleteQuestion(q.ID)
		}
		for _, d := range DemoQuestions() {
			if _, err := e.AddQuestion(d); err != nil {
				return err
			}
		}
		seeded = e.GetQuestions()
		return nil
	})
	return seeded, err
}

func (s *Service) flowOptions(sid string) []flow.Option {
	return []flow.Option{
		flow.WithHooks(s.hooks),
		flow.WithLogger(s.logger.With("session_id", sid)),
	}
}

// StartSession snapshots the questionnaire into a new respondent session
// positioned at the first question. Empty questionnaires return domain.ErrEmptyFlow.
func (s *Service) StartSession(ctx context.Context, qid string) (domain.FlowRecord, error) {
	questions, err := s.load(ctx, qid)
	if err != nil {
		return domain.FlowRecord{}, err
	}

	sid := s.newSessionID()
	eng := flow.New(questions, s.flowOptions(sid)...)
	if err := eng.Start(); err != nil {
		return domain.FlowRecord{}, err
	}

	now := s.now().UTC()
	rec := eng.Record()
	rec.SessionID = sid
	rec.QuestionnaireID = qid
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.sessions.Save(ctx, sid, rec); err != nil {
		return domain.FlowRecord{}, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info("Session started", "session_id", sid, "questionnaire_id", qid, "questions", len(questions))
	return rec, nil
}

// Session returns the stored record of a session.
func (s *Service) Session(ctx context.Context, sid string) (domain.FlowRecord, error) {
	return s.sessions.Load(ctx, sid)
}

// SessionIDs lists stored sessions.
func (s *Service) SessionIDs(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

// Answer validates value against the current question, records it and advances.
func (s *Service) Answer(ctx context.Context, sid, value string) (domain.FlowRecord, error) {
	return s.advance(ctx, sid, domain.EventAnswer, value)
}

// Skip records a skip for the current question and advances.
func (s *Service) Skip(ctx context.Context, sid string) (domain.FlowRecord, error) {
	return s.advance(ctx, sid, domain.EventSkip, "")
}

// advance saves the moved session before recording the answer, so a failed save
// never leaves an answer for a question the session is still on.
func (s *Service) advance(ctx context.Context, sid string, ev domain.Event, value string) (domain.FlowRecord, error) {
	var answer domain.Answer
	advanceFn := func(ctx context.Context, rec domain.FlowRecord) (domain.FlowRecord, error) {
		eng, err := flow.Restore(rec, s.flowOptions(sid)...)
		if err != nil {
			return rec, fmt.Errorf("session %s is corrupt: %w", sid, err)
		}

		current, ok := eng.Current()
		if !ok {
			return rec, fmt.Errorf("%w: %s in %s", domain.ErrInvalidEvent, ev, eng.State())
		}

		answer = domain.Answer{QuestionID: current.ID, AnsweredAt: s.now().UTC()}
		if ev == domain.EventSkip {
			answer.Skipped = true
		} else {
			answer.Value, err = domain.ValidateAnswer(current, value)
			if err != nil {
				return rec, err
			}
		}

		if err := eng.Send(ev); err != nil {
			return rec, err
		}

		next := eng.Record()
		next.SessionID = rec.SessionID
		next.QuestionnaireID = rec.QuestionnaireID
		next.CreatedAt = rec.CreatedAt
		next.UpdatedAt = answer.AnsweredAt
		return next, nil
	}

	record := func(ctx context.Context, next domain.FlowRecord) error {
		if err := s.answers.Record(ctx, sid, answer); err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
		if next.Status == domain.StatusCompleted {
			s.logger.Info("Session completed", "session_id", sid, "questionnaire_id", next.QuestionnaireID)
		}
		return nil
	}

	return s.sessions.UpdateThen(ctx, sid, advanceFn, record)
}

// Answers returns the recorded answers of a session.
func (s *Service) Answers(ctx context.Context, sid string) ([]domain.Answer, error) {
	if _, err := s.sessions.Load(ctx, sid); err != nil {
		return nil, err
	}
	return s.answers.Answers(ctx, sid)
}

// DeleteSession removes a session and its answers.
func (s *Service) DeleteSession(ctx context.Context, sid string) error {
	return s.sessions.WithLock(ctx, sid, func(ctx context.Context) error {
		store := s.sessions.Store()
		if _, err := store.Load(ctx, sid); err != nil {
			return err
		}
		if err := s.answers.Clear(ctx, sid); err != nil {
			return fmt.Errorf("failed to clear answers: %w", err)
		}
		return store.Delete(ctx, sid)
	})
}
