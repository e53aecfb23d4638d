package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// Commands recognised at the prompt.
const (
	CommandSkip = ":skip"
	CommandQuit = ":quit"
)

// ErrInterrupted is returned when a signal or context cancellation ends the run.
// The session stays persisted and can be resumed.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the prompt loop of a respondent session using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Filter rewrites input before it is answered. Defaults to OptionNumberFilter.
	Filter InputFilter

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// SessionID resumes an existing session when set.
	SessionID string

	// QuestionnaireID is the questionnaire new sessions start on.
	QuestionnaireID string

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run prompts until the session completes, the respondent quits or input ends.
// The last known record is returned in every case so callers can report progress.
func (r *Runner) Run(ctx context.Context, svc Service) (domain.FlowRecord, error) {
	handler := r.resolveHandler()
	filter := r.Filter
	if filter == nil {
		filter = OptionNumberFilter()
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rec, resumed, err := LoadOrStart(ctx, svc, r.SessionID, r.QuestionnaireID)
	if err != nil {
		return domain.FlowRecord{}, err
	}
	logger.Debug("session ready", "session_id", rec.SessionID, "resumed", resumed, "index", rec.Index)
	if resumed && !r.Headless {
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s at question %d.", rec.SessionID, rec.Index+1))
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		needsInput, err := handler.Output(ctx, rec.View())
		if err != nil {
			return rec, fmt.Errorf("output error: %w", err)
		}
		if rec.Status.Terminal() || !needsInput {
			return rec, nil
		}

		input, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if signals.Interrupted() {
				logger.Debug("runner input: context cancelled", "err", signals.Context().Err())
				r.resumeHint(ctx, handler, rec)
				return rec, ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				r.resumeHint(ctx, handler, rec)
				return rec, nil
			}
			return rec, fmt.Errorf("input error: %w", err)
		}

		next, err := r.step(ctx, svc, filter, rec, input)
		if errors.Is(err, errQuit) {
			r.resumeHint(ctx, handler, rec)
			return rec, nil
		}
		if err != nil {
			if !isRetryable(err) {
				return rec, err
			}
			logger.Debug("answer rejected", "session_id", rec.SessionID, "err", err)
			if err := handler.SystemOutput(ctx, domain.Message(err)); err != nil {
				return rec, fmt.Errorf("output error: %w", err)
			}
			continue
		}
		rec = next
	}
}

var errQuit = errors.New("quit")

func (r *Runner) step(ctx context.Context, svc Service, filter InputFilter, rec domain.FlowRecord, input string) (domain.FlowRecord, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case CommandQuit, "exit", "quit":
		return rec, errQuit
	case CommandSkip, "":
		return svc.Skip(ctx, rec.SessionID)
	}

	q, ok := rec.Current()
	if !ok {
		return rec, domain.ErrInvalidEvent
	}
	value, err := filter(ctx, q, input)
	if err != nil {
		return rec, &domain.ValidationError{Field: "value", Message: err.Error(), Err: domain.ErrInvalidAnswer}
	}
	return svc.Answer(ctx, rec.SessionID, value)
}

func isRetryable(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) || errors.Is(err, domain.ErrInvalidAnswer)
}

func (r *Runner) resumeHint(ctx context.Context, handler IOHandler, rec domain.FlowRecord) {
	if r.Headless || rec.Status.Terminal() {
		return
	}
	_ = handler.SystemOutput(ctx, fmt.Sprintf("Progress saved. Resume with --session %s", rec.SessionID))
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- Questionnaire ---")
	}
	// Memoize to prevent creating new Pumps on subsequent Run() calls
	r.Handler = th
	return th
}
