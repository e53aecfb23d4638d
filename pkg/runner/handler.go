package runner

import (
	"context"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// IOHandler defines the strategy for interacting with the respondent.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the session to the respondent.
	// Returns true if a response should be read next.
	Output(ctx context.Context, view domain.SessionView) (bool, error)

	// Input reads a response from the respondent.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (validation feedback, status updates).
	// This is distinct from question rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling this package.
type ContentRenderer func(string) (string, error)
