package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/questionnaire/pkg/adapters/memory"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/persistence/middleware"
	"github.com/aretw0/questionnaire/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.AnswerStore, cfg middleware.EncryptionConfig) ports.AnswerStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func answer(qid, value string) domain.Answer {
	return domain.Answer{QuestionID: qid, Value: value, AnsweredAt: time.Now().UTC()}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunAnswerStoreContract(t, encrypted(t, memory.NewAnswerStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewAnswerStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "s1", answer("q1", "my secret sauce")))
	require.NoError(t, store.Record(ctx, "s1", domain.Answer{QuestionID: "q2", Skipped: true}))

	raw, err := underlying.Answers(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.True(t, strings.HasPrefix(raw[0].Value, "enc:v1:"))
	assert.NotContains(t, raw[0].Value, "secret")
	assert.Equal(t, "q1", raw[0].QuestionID, "question ids stay readable")
	assert.Empty(t, raw[1].Value)

	got, err := store.Answers(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "my secret sauce", got[0].Value)
	assert.True(t, got[1].Skipped)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewAnswerStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).Record(ctx, "s1", answer("q1", "old")))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	got, err := rotated.Answers(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "old", got[0].Value)

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Answers(ctx, "s1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewAnswerStore()
	ctx := context.Background()
	require.NoError(t, underlying.Record(ctx, "s1", answer("q1", "plain")))

	_, err := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Answers(ctx, "s1")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t), FallbackKeys: [][]byte{{1}}})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.DecodeKey("not base64!")
	assert.Error(t, err)
	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
