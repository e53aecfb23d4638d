package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless suppresses the banner and the resume hint.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithRenderer configures the content renderer used by the default TextHandler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithFilter configures the input filter applied before answers are sent.
func WithFilter(filter InputFilter) Option {
	return func(r *Runner) {
		r.Filter = filter
	}
}

// WithSessionID resumes the given session instead of starting a new one.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithQuestionnaire selects the questionnaire new sessions are started on.
func WithQuestionnaire(id string) Option {
	return func(r *Runner) {
		r.QuestionnaireID = id
	}
}
