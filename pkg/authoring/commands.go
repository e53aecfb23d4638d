package authoring

import (
	"fmt"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// Command is an event accepted by the engine in its single "ready" state.
type Command interface {
	// Name identifies the command in logs and metrics.
	Name() string

	target() string
	apply(e *Engine) (outcome, error)
}

// outcome is the result of a command that passed its guards.
// A nil questions slice leaves the list as it is.
type outcome struct {
	questions  []domain.Question
	clearError bool
	ignored    bool
}

// AddCommand appends a question (ADD_QUESTION).
type AddCommand struct {
	Draft domain.Draft

	result *domain.Question
}

func (c AddCommand) Name() string   { return "add_question" }
func (c AddCommand) target() string { return "" }

func (c AddCommand) apply(e *Engine) (outcome, error) {
	if e.duplicateOf(c.Draft.Text, "") {
		return outcome{}, duplicateError()
	}

	id, err := e.uniqueID()
	if err != nil {
		return outcome{}, err
	}

	q := domain.Question{
		ID:      id,
		Text:    strings.TrimSpace(c.Draft.Text),
		Kind:    c.Draft.Kind,
		Options: domain.NormalizeOptions(c.Draft.Kind, c.Draft.Options),
	}
	if q.Kind == "" {
		q.Kind = domain.KindText
	}
	if err := domain.ValidateQuestion(q); err != nil {
		return outcome{}, err
	}

	next := make([]domain.Question, 0, len(e.questions)+1)
	next = append(next, e.questions...)
	next = append(next, q)

	if c.result != nil {
		*c.result = q.Clone()
	}
	return outcome{questions: next, clearError: true}, nil
}

// EditCommand patches a question in place (EDIT_QUESTION).
type EditCommand struct {
	ID    string
	Patch domain.Patch
}

func (c EditCommand) Name() string   { return "edit_question" }
func (c EditCommand) target() string { return c.ID }

func (c EditCommand) apply(e *Engine) (outcome, error) {
	i := e.indexOf(c.ID)
	if i < 0 {
		return outcome{ignored: true}, nil
	}

	if c.Patch.Text != nil && e.duplicateOf(*c.Patch.Text, c.ID) {
		return outcome{}, duplicateError()
	}

	merged := c.Patch.Apply(e.questions[i])
	if err := domain.ValidateQuestion(merged); err != nil {
		return outcome{}, err
	}

	next := domain.CloneQuestions(e.questions)
	next[i] = merged
	return outcome{questions: next, clearError: true}, nil
}

// DeleteCommand removes a question (DELETE_QUESTION).
type DeleteCommand struct {
	ID string
}

func (c DeleteCommand) Name() string   { return "delete_question" }
func (c DeleteCommand) target() string { return c.ID }

func (c DeleteCommand) apply(e *Engine) (outcome, error) {
	i := e.indexOf(c.ID)
	if i < 0 {
		return outcome{clearError: true, ignored: true}, nil
	}

	next := make([]domain.Question, 0, len(e.questions)-1)
	next = append(next, e.questions[:i]...)
	next = append(next, e.questions[i+1:]...)
	e.retired[c.ID] = struct{}{}
	return outcome{questions: next, clearError: true}, nil
}

// ReorderCommand moves one question to a new position (REORDER_QUESTIONS).
type ReorderCommand struct {
	From int
	To   int
}

func (c ReorderCommand) Name() string   { return "reorder_questions" }
func (c ReorderCommand) target() string { return "" }

func (c ReorderCommand) apply(e *Engine) (outcome, error) {
	n := len(e.questions)
	if c.From < 0 || c.From >= n || c.To < 0 || c.To >= n {
		return outcome{}, &domain.PreconditionError{
			Op:      c.Name(),
			Message: fmt.Sprintf("positions %d and %d must be within [0, %d)", c.From, c.To, n),
			Err:     domain.ErrIndexOutOfRange,
		}
	}
	return outcome{questions: move(e.questions, c.From, c.To), clearError: true}, nil
}

// ResetErrorCommand clears the last error (RESET_ERROR).
type ResetErrorCommand struct{}

func (ResetErrorCommand) Name() string   { return "reset_error" }
func (ResetErrorCommand) target() string { return "" }

func (ResetErrorCommand) apply(*Engine) (outcome, error) {
	return outcome{clearError: true}, nil
}

// move returns a new list with the element at from removed and reinserted at to.
func move(in []domain.Question, from, to int) []domain.Question {
	out := domain.CloneQuestions(in)
	if from == to {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]domain.Question{moved}, out[to:]...)...)
	return out
}
