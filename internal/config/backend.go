package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/pkg/adapters/file"
	"github.com/aretw0/questionnaire/pkg/adapters/memory"
	"github.com/aretw0/questionnaire/pkg/adapters/redis"
	"github.com/aretw0/questionnaire/pkg/persistence/middleware"
)

// Backend is an opened set of stores. Close releases any connection held.
type Backend struct {
	Stores questionnaire.Stores
	Kind   string
	close  func() error
}

// Close releases the backend.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the stores selected by cfg.Store.
// The redis backend is pinged so a wrong address fails here instead of on first use.
func OpenBackend(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mws, err := cfg.Protection.Middlewares()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if len(mws) > 0 {
		logger.Debug("answer protection enabled", "pii_patterns", len(cfg.Protection.PIIPatterns), "encrypted", cfg.Protection.EncryptionKey != "")
		backend.Stores.Answers = middleware.Chain(backend.Stores.Answers, mws...)
	}
	return backend, nil
}

func openStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Store {
	case StoreMemory:
		logger.Debug("using memory store")
		return &Backend{
			Kind: StoreMemory,
			Stores: questionnaire.Stores{
				Questions: memory.NewQuestionStore(),
				Sessions:  memory.NewSessionStore(),
				Answers:   memory.NewAnswerStore(),
			},
		}, nil

	case StoreFile:
		logger.Debug("using file store", "dir", cfg.DataDir)
		return &Backend{
			Kind: StoreFile,
			Stores: questionnaire.Stores{
				Questions: file.NewQuestionStore(cfg.DataDir),
				Sessions:  file.NewSessionStore(cfg.DataDir),
				Answers:   file.NewAnswerStore(cfg.DataDir),
			},
		}, nil

	case StoreRedis:
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("using redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix, "ttl", cfg.Redis.TTL)

		sessionOpts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL)}
		return &Backend{
			Kind: StoreRedis,
			Stores: questionnaire.Stores{
				Questions: redis.NewQuestionStore(client, redis.WithPrefix(cfg.Redis.Prefix)),
				Sessions:  redis.NewSessionStore(client, sessionOpts...),
				Answers:   redis.NewAnswerStore(client, sessionOpts...),
				Locker:    redis.NewLocker(client, cfg.Redis.Prefix),
			},
			close: client.Close,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, cfg.Store)
}
