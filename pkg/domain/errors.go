package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateQuestion is returned when a question text already exists (case-insensitive).
	ErrDuplicateQuestion = errors.New("duplicate question")

	// ErrInvalidQuestion is returned when a question breaks an entity invariant.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidKind is returned when a question kind is not one of the known variants.
	ErrInvalidKind = errors.New("invalid question kind")

	// ErrInvalidOptions is returned when multiple choice options cannot be parsed.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrIndexOutOfRange is returned when a reorder position is outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidInitialList is returned when an engine is seeded with a list that breaks invariants.
	ErrInvalidInitialList = errors.New("invalid initial question list")

	// ErrQuestionNotFound is returned by adapters when a question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrEmptyFlow is returned when a flow is started without questions.
	ErrEmptyFlow = errors.New("flow has no questions")

	// ErrInvalidEvent is returned when an event has no transition in the current state.
	ErrInvalidEvent = errors.New("invalid event for state")

	// ErrInvalidAnswer is returned when a response does not fit its question.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuestionnaireNotFound is returned when a questionnaire ID cannot be found in the store.
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")

	// ErrAnswerTooLarge and ErrAnswerEncoding are returned by CleanAnswer.
	ErrAnswerTooLarge = errors.New("answer exceeds maximum allowed size")
	ErrAnswerEncoding = errors.New("answer contains invalid UTF-8")
)

// Messages shown to authors and respondents.
const (
	MsgDuplicateQuestion = "This question already exists."
	MsgQuestionRequired  = "Question is required"
	MsgOptionsRequired   = "Options are required for multiple choice"
	MsgInvalidOptions    = "Please enter at least two valid, non-empty options separated by commas. No spaces allowed between options."
	MsgAnswerRequired    = "Answer is required"
)

// ValidationError reports input that was rejected by a guard or a parser.
// Message is meant for humans and can be shown as-is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PreconditionError reports a call whose arguments are impossible in the current state,
// such as an out-of-range reorder.
type PreconditionError struct {
	Op      string
	Message string
	Err     error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// Message extracts the human readable part of an error produced by this package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
