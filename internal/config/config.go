// Package config loads CLI and server settings.
// Precedence is built-in defaults, then a YAML (or JSON) file, then QUESTIONNAIRE_* environment variables.
// Explicit command-line flags are applied on top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/internal/logging"
	"github.com/aretw0/questionnaire/pkg/adapters/file"
	"github.com/aretw0/questionnaire/pkg/adapters/redis"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// EnvPrefix is prepended to every environment variable read by ApplyEnv.
const EnvPrefix = "QUESTIONNAIRE_"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// HTTPConfig configures the REST server.
type HTTPConfig struct {
	Port string `yaml:"port" json:"port"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// ProtectionConfig configures at-rest protection of answer values.
// Keys are base64 encoded 32 byte AES keys. FallbackKeys only decrypt.
type ProtectionConfig struct {
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
	PIIPatterns   []string `yaml:"pii_patterns" json:"pii_patterns"`
}

// Config holds every tunable of the questionnaire binaries.
type Config struct {
	Store         string           `yaml:"store" json:"store"`
	DataDir       string           `yaml:"data_dir" json:"data_dir"`
	Questionnaire string           `yaml:"questionnaire" json:"questionnaire"`
	HTTP          HTTPConfig       `yaml:"http" json:"http"`
	Redis         RedisConfig      `yaml:"redis" json:"redis"`
	Log           LogConfig        `yaml:"log" json:"log"`
	MaxInputSize  int              `yaml:"max_input_size" json:"max_input_size"`
	Protection    ProtectionConfig `yaml:"protection" json:"protection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store:         StoreFile,
		DataDir:       file.DefaultBasePath,
		Questionnaire: questionnaire.DefaultQuestionnaire,
		HTTP:          HTTPConfig{Port: "8080"},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: redis.DefaultPrefix,
		},
		Log:          LogConfig{Level: "info", Format: "text"},
		MaxInputSize: domain.DefaultMaxAnswerSize,
	}
}

// Load builds a Config from defaults, the optional file at path and the environment.
// A missing file is an error only when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML or JSON document at path. JSON is picked by extension.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ApplyEnv overlays QUESTIONNAIRE_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, EnvPrefix, name, v)
		}
		*dst = n
		return nil
	}

	str("STORE", &c.Store)
	str("DATA_DIR", &c.DataDir)
	str("ID", &c.Questionnaire)
	str("PORT", &c.HTTP.Port)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("REDIS_PREFIX", &c.Redis.Prefix)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("ENCRYPTION_KEY", &c.Protection.EncryptionKey)
	if v, ok := lookup(EnvPrefix + "FALLBACK_KEYS"); ok && v != "" {
		c.Protection.FallbackKeys = splitList(v)
	}

	if err := num("REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	if err := num("MAX_INPUT_SIZE", &c.MaxInputSize); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sSESSION_TTL=%q: %v", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.Redis.TTL = ttl
	}
	return nil
}

// Validate rejects values no backend or logger can work with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store %q (want memory, file or redis)", ErrInvalidConfig, c.Store)
	}
	if c.Store == StoreFile && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir is required for the file store", ErrInvalidConfig)
	}
	if c.Store == StoreRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("%w: redis.addr is required for the redis store", ErrInvalidConfig)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis.ttl cannot be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Questionnaire) == "" {
		return fmt.Errorf("%w: questionnaire id is required", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q (want text or json)", ErrInvalidConfig, c.Log.Format)
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("%w: max_input_size cannot be negative", ErrInvalidConfig)
	}
	if _, err := c.Protection.Middlewares(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Middlewares builds the answer store decorators. PII masking runs before encryption.
func (p ProtectionConfig) Middlewares() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(p.PIIPatterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(p.PIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	if p.EncryptionKey == "" {
		if len(p.FallbackKeys) > 0 {
			return nil, errors.New("fallback_keys require an encryption_key")
		}
		return mws, nil
	}
	active, err := middleware.DecodeKey(p.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range p.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	return append(mws, mw), nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
