package flow

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/questionnaire/internal/logging"
	"github.com/aretw0/questionnaire/pkg/domain"
)

// Engine is the question flow state machine for one respondent run.
// It is not reusable: once completed, construct a new Engine to restart.
type Engine struct {
	questions []domain.Question
	status    domain.Status
	index     int // -1 unless answering

	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithHooks registers transition observers.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an idle engine over a copy of questions.
func New(questions []domain.Question, opts ...Option) *Engine {
	e := &Engine{
		questions: domain.CloneQuestions(questions),
		status:    domain.StatusIdle,
		index:     -1,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore rebuilds an engine from a persisted record.
func Restore(rec domain.FlowRecord, opts ...Option) (*Engine, error) {
	e := New(rec.Questions, opts...)

	switch rec.Status {
	case domain.StatusIdle, domain.StatusCompleted:
		e.status = rec.Status
	case domain.StatusAnswering:
		if rec.Index < 0 || rec.Index >= len(rec.Questions) {
			return nil, fmt.Errorf("restore flow: index %d outside [0, %d)", rec.Index, len(rec.Questions))
		}
		e.status = domain.StatusAnswering
		e.index = rec.Index
	default:
		return nil, fmt.Errorf("restore flow: unknown status %q", rec.Status)
	}
	return e, nil
}

// Start begins the flow at the first question. An empty flow stays idle and returns domain.ErrEmptyFlow.
func (e *Engine) Start() error { return e.Send(domain.EventStart) }

// Answer moves past the current question.
func (e *Engine) Answer() error { return e.Send(domain.EventAnswer) }

// Skip moves past the current question without an answer. It sequences exactly like Answer.
func (e *Engine) Skip() error { return e.Send(domain.EventSkip) }

// Send dispatches an event. Unhandled events leave the engine untouched.
func (e *Engine) Send(ev domain.Event) error {
	from := e.status

	for _, t := range table[from][ev] {
		if t.guard != nil && !t.guard(e) {
			continue
		}
		e.status = t.target
		if t.action != nil {
			t.action(e)
		}
		e.logger.Debug("Flow transition", "from", from, "to", e.status, "event", ev, "index", e.index)
		e.hooks.Transition(domain.TransitionEvent{From: from, To: e.status, Event: ev, Index: e.index})
		return nil
	}

	if from == domain.StatusIdle && ev == domain.EventStart {
		return domain.ErrEmptyFlow
	}
	e.logger.Debug("Flow event ignored", "state", from, "event", ev)
	return fmt.Errorf("%w: %s in %s", domain.ErrInvalidEvent, ev, from)
}

// State returns the current state name.
func (e *Engine) State() domain.Status { return e.status }

// Index returns the position of the current question, or -1 outside answering.
func (e *Engine) Index() int { return e.index }

// Len returns the number of questions in the run.
func (e *Engine) Len() int { return len(e.questions) }

// Current returns the active question.
func (e *Engine) Current() (domain.Question, bool) {
	if e.status != domain.StatusAnswering {
		return domain.Question{}, false
	}
	return e.questions[e.index].Clone(), true
}

// CurrentQuestion returns the prompt of the active question.
func (e *Engine) CurrentQuestion() (string, bool) {
	q, ok := e.Current()
	return q.Text, ok
}

// Snapshot is the externally observable state of the engine.
type Snapshot struct {
	Status  domain.Status    `json:"status"`
	Index   int              `json:"index"`
	Total   int              `json:"total"`
	Current *domain.Question `json:"current,omitempty"`
}

// Snapshot returns the current state plus the active question.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{Status: e.status, Index: e.index, Total: len(e.questions)}
	if q, ok := e.Current(); ok {
		s.Current = &q
	}
	return s
}

// Record exports the engine state for persistence. Session metadata is left to the caller.
func (e *Engine) Record() domain.FlowRecord {
	return domain.FlowRecord{
		Status:    e.status,
		Index:     e.index,
		Questions: domain.CloneQuestions(e.questions),
	}
}
