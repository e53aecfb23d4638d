package ports

import (
	"context"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// QuestionStore persists the ordered question list of a questionnaire.
// Lists are stored and returned as-is; order is preserved.
type QuestionStore interface {
	// Save replaces the question list of a questionnaire.
	Save(ctx context.Context, questionnaireID string, questions []domain.Question) error

	// Load returns the question list of a questionnaire.
	// Returns domain.ErrQuestionnaireNotFound if nothing was saved under that ID.
	Load(ctx context.Context, questionnaireID string) ([]domain.Question, error)

	// Delete removes a questionnaire. Deleting a missing ID is not an error.
	Delete(ctx context.Context, questionnaireID string) error

	// List returns the IDs of stored questionnaires.
	List(ctx context.Context) ([]string, error)
}

// SessionStore persists respondent flow records.
type SessionStore interface {
	// Save persists the record for a given session ID.
	Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error

	// Load retrieves the record for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.FlowRecord, error)

	// Delete removes the record for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

// AnswerStore records respondent answers.
type AnswerStore interface {
	// Record appends an answer for a session. A later answer for the same
	// question ID supersedes the earlier one.
	Record(ctx context.Context, sessionID string, answer domain.Answer) error

	// Answers returns the answers of a session in question order of first recording.
	// A session without answers yields an empty slice, not an error.
	Answers(ctx context.Context, sessionID string) ([]domain.Answer, error)

	// Clear removes all answers of a session.
	Clear(ctx context.Context, sessionID string) error
}
