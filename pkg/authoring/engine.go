package authoring

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/questionnaire/internal/logging"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/google/uuid"
)

// Engine is the question configuration state machine.
type Engine struct {
	questions []domain.Question
	lastError string
	retired   map[string]struct{} // IDs of deleted questions

	newID  func() string
	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithIDGenerator replaces the UUID generator used for new questions.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithHooks registers observers for applied and rejected commands.
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

// New creates an engine seeded with a copy of initial.
// The initial list must satisfy the entity invariants (domain.ValidateList).
func New(initial []domain.Question, opts ...Option) (*Engine, error) {
	e := &Engine{
		retired: make(map[string]struct{}),
		newID:   uuid.NewString,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := domain.ValidateList(initial); err != nil {
		return nil, err
	}
	e.questions = domain.CloneQuestions(initial)
	return e, nil
}

// GetQuestions returns a snapshot of the ordered list.
func (e *Engine) GetQuestions() []domain.Question {
	return domain.CloneQuestions(e.questions)
}

// Len returns the number of questions.
func (e *Engine) Len() int { return len(e.questions) }

// Question looks up a question by ID.
func (e *Engine) Question(id string) (domain.Question, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return domain.Question{}, false
	}
	return e.questions[i].Clone(), true
}

// LastError returns the message of the most recent rejected command, or "".
func (e *Engine) LastError() string { return e.lastError }

// AddQuestion appends a new question built from d.
// A duplicate text is rejected with a *domain.ValidationError and the list is unchanged.
func (e *Engine) AddQuestion(d domain.Draft) (domain.Question, error) {
	var added domain.Question
	err := e.Dispatch(AddCommand{Draft: d, result: &added})
	return added, err
}

// EditQuestion merges p into the question with the given ID, keeping its position.
// Unknown IDs are ignored. A text that collides with another question rejects the whole patch.
func (e *Engine) EditQuestion(id string, p domain.Patch) error {
	return e.Dispatch(EditCommand{ID: id, Patch: p})
}

// DeleteQuestion removes the question with the given ID, if present.
func (e *Engine) DeleteQuestion(id string) {
	_ = e.Dispatch(DeleteCommand{ID: id})
}

// ReorderQuestions moves the question at from so that it ends up at to.
// Both indices must be within [0, len); otherwise a *domain.PreconditionError is returned.
func (e *Engine) ReorderQuestions(from, to int) error {
	return e.Dispatch(ReorderCommand{From: from, To: to})
}

// ResetError clears LastError.
func (e *Engine) ResetError() {
	_ = e.Dispatch(ResetErrorCommand{})
}

// Dispatch applies a single command. It is the only path that mutates the engine.
func (e *Engine) Dispatch(cmd Command) error {
	out, err := cmd.apply(e)

	ev := domain.CommandEvent{Command: cmd.Name(), QuestionID: cmd.target()}
	if err != nil {
		e.lastError = domain.Message(err)
		ev.Rejected = true
		ev.Err = err
		ev.Count = len(e.questions)
		e.logger.Info("Command rejected", "command", cmd.Name(), "err", err)
		e.hooks.Command(ev)
		return err
	}

	if out.questions != nil {
		e.questions = out.questions
	}
	if out.clearError {
		e.lastError = ""
	}
	ev.Count = len(e.questions)
	ev.Ignored = out.ignored
	if out.ignored {
		e.logger.Debug("Command ignored, unknown question", "command", cmd.Name(), "question_id", ev.QuestionID)
	} else {
		e.logger.Debug("Command applied", "command", cmd.Name(), "count", ev.Count)
	}
	e.hooks.Command(ev)
	return nil
}

func (e *Engine) indexOf(id string) int {
	for i, q := range e.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// duplicateOf reports whether text collides with any question other than skipID.
func (e *Engine) duplicateOf(text, skipID string) bool {
	for _, q := range e.questions {
		if q.ID != skipID && domain.SameText(q.Text, text) {
			return true
		}
	}
	return false
}

func (e *Engine) uniqueID() (string, error) {
	// Generators are random; a handful of attempts only matters for broken custom ones.
	for range 8 {
		id := strings.TrimSpace(e.newID())
		if _, used := e.retired[id]; id != "" && !used && e.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: id generator produced no unused id", domain.ErrInvalidQuestion)
}

func duplicateError() error {
	return &domain.ValidationError{
		Field:   "question",
		Message: domain.MsgDuplicateQuestion,
		Err:     domain.ErrDuplicateQuestion,
	}
}
