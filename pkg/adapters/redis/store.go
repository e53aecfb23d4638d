package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/questionnaire/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "questionnaire:"

// farFuture is the index score of entries without expiration (2100-01-01).
const farFuture = 4102444800

type options struct {
	prefix string
	ttl    time.Duration
}

// Option configures a Redis store.
type Option func(*options)

// WithTTL sets the expiration for stored entries. Zero disables expiration.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

func buildOptions(opts []Option) options {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a go-redis client for the given server.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// index is a JSON-per-key collection with a ZSET of member IDs scored by expiry.
type index struct {
	client *backend.Client
	ns     string
	ttl    time.Duration
}

func (x index) key(id string) string { return x.ns + id }
func (x index) indexKey() string     { return x.ns + "index" }

func (x index) save(ctx context.Context, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	score := float64(time.Now().Add(x.ttl).Unix())
	if x.ttl == 0 {
		score = farFuture
	}

	pipe := x.client.Pipeline()
	pipe.Set(ctx, x.key(id), data, x.ttl)
	pipe.ZAdd(ctx, x.indexKey(), backend.Z{Score: score, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (x index) load(ctx context.Context, id string, v any, notFound error) error {
	val, err := x.client.Get(ctx, x.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return notFound
		}
		return fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}
	return nil
}

func (x index) remove(ctx context.Context, id string) error {
	pipe := x.client.Pipeline()
	pipe.Del(ctx, x.key(id))
	pipe.ZRem(ctx, x.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// list prunes expired members before reading the index.
func (x index) list(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := x.client.ZRemRangeByScore(ctx, x.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}
	ids, err := x.client.ZRange(ctx, x.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return ids, nil
}

// SessionStore implements ports.SessionStore using Redis.
type SessionStore struct {
	client *backend.Client
	idx    index
}

// NewSessionStore creates a session store from an existing client.
// Keys are <prefix>session:<id> with a <prefix>session:index ZSET.
func NewSessionStore(client *backend.Client, opts ...Option) *SessionStore {
	o := buildOptions(opts)
	return &SessionStore{
		client: client,
		idx:    index{client: client, ns: o.prefix + "session:", ttl: o.ttl},
	}
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error {
	return s.idx.save(ctx, sessionID, rec)
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.FlowRecord, error) {
	var rec domain.FlowRecord
	if err := s.idx.load(ctx, sessionID, &rec, domain.ErrSessionNotFound); err != nil {
		return domain.FlowRecord{}, err
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.idx.remove(ctx, sessionID)
}

// List returns active sessions, lazily dropping expired ones from the index.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	return s.idx.list(ctx)
}

// Close closes the redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// QuestionStore implements ports.QuestionStore using Redis.
// Question lists never expire; WithTTL is ignored.
type QuestionStore struct {
	idx index
}

// NewQuestionStore creates a question store from an existing client.
func NewQuestionStore(client *backend.Client, opts ...Option) *QuestionStore {
	o := buildOptions(opts)
	return &QuestionStore{
		idx: index{client: client, ns: o.prefix + "questions:"},
	}
}

func (s *QuestionStore) Save(ctx context.Context, questionnaireID string, questions []domain.Question) error {
	return s.idx.save(ctx, questionnaireID, domain.CloneQuestions(questions))
}

func (s *QuestionStore) Load(ctx context.Context, questionnaireID string) ([]domain.Question, error) {
	var questions []domain.Question
	if err := s.idx.load(ctx, questionnaireID, &questions, domain.ErrQuestionnaireNotFound); err != nil {
		return nil, err
	}
	return domain.CloneQuestions(questions), nil
}

func (s *QuestionStore) Delete(ctx context.Context, questionnaireID string) error {
	return s.idx.remove(ctx, questionnaireID)
}

func (s *QuestionStore) List(ctx context.Context) ([]string, error) {
	return s.idx.list(ctx)
}

// recordScript stores the answer in a hash and appends the question ID to the
// order list only the first time it is seen.
var recordScript = backend.NewScript(`
if redis.call("HSET", KEYS[1], ARGV[1], ARGV[2]) == 1 then
	redis.call("RPUSH", KEYS[2], ARGV[1])
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call("PEXPIRE", KEYS[1], ttl)
	redis.call("PEXPIRE", KEYS[2], ttl)
end
return 1
`)

// AnswerStore implements ports.AnswerStore using a hash of answers plus a list
// holding first-recording order.
type AnswerStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewAnswerStore creates an answer store from an existing client.
func NewAnswerStore(client *backend.Client, opts ...Option) *AnswerStore {
	o := buildOptions(opts)
	return &AnswerStore{client: client, prefix: o.prefix + "answers:", ttl: o.ttl}
}

func (s *AnswerStore) hashKey(sessionID string) string  { return s.prefix + sessionID }
func (s *AnswerStore) orderKey(sessionID string) string { return s.prefix + sessionID + ":order" }

func (s *AnswerStore) Record(ctx context.Context, sessionID string, answer domain.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	keys := []string{s.hashKey(sessionID), s.orderKey(sessionID)}
	if err := recordScript.Run(ctx, s.client, keys, answer.QuestionID, data, s.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

func (s *AnswerStore) Answers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	order, err := s.client.LRange(ctx, s.orderKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read answer order: %w", err)
	}
	if len(order) == 0 {
		return []domain.Answer{}, nil
	}

	values, err := s.client.HMGet(ctx, s.hashKey(sessionID), order...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	answers := make([]domain.Answer, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Hash and list diverged (partial expiry); skip the orphan.
			continue
		}
		var a domain.Answer
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer %s: %w", order[i], err)
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (s *AnswerStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.hashKey(sessionID), s.orderKey(sessionID)).Err()
}
