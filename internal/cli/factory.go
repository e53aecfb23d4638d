package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/internal/config"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// App bundles what every command needs: configuration, the opened backend and the service.
type App struct {
	Config  config.Config
	Service *questionnaire.Service
	Metrics *observability.Metrics
	Logger  *slog.Logger

	backend *config.Backend
}

// Close releases the backend.
func (a *App) Close() error {
	return a.backend.Close()
}

// Bootstrap opens the configured backend and wires the service with metrics and debug hooks.
// A nil registerer gives the app a private registry.
func Bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg); err != nil {
			return nil, err
		}
	}

	backend, err := config.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics(reg)
	svc := questionnaire.New(backend.Stores,
		questionnaire.WithLogger(logger),
		questionnaire.WithHooks(observability.Combine(metrics.Hooks(), createDebugHooks(logger))),
	)

	return &App{
		Config:  cfg,
		Service: svc,
		Metrics: metrics,
		Logger:  logger,
		backend: backend,
	}, nil
}

func createDebugHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnCommand: func(e domain.CommandEvent) {
			if e.Rejected {
				logger.Debug("Command rejected", "command", e.Command, "question_id", e.QuestionID, "err", e.Err)
				return
			}
			if e.Ignored {
				logger.Debug("Command ignored", "command", e.Command, "question_id", e.QuestionID)
				return
			}
			logger.Debug("Command applied", "command", e.Command, "question_id", e.QuestionID, "count", e.Count)
		},
		OnTransition: func(e domain.TransitionEvent) {
			logger.Debug("Flow transition", "from", e.From, "to", e.To, "event", e.Event, "index", e.Index)
		},
	}
}
