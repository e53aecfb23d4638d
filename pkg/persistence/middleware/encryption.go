package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/ports"
)

// envelopePrefix marks an encrypted answer value.
const envelopePrefix = "enc:v1:"

// KeySize is the AES-256 key length.
const KeySize = 32

// ErrInvalidKey is returned for keys that are not KeySize bytes.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.AnswerStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts answer values using AES-GCM.
// Question IDs, timestamps and the skipped flag stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, ErrInvalidKey
	}
	for _, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key: %w", ErrInvalidKey)
		}
	}
	return func(next ports.AnswerStore) ports.AnswerStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// DecodeKey parses a base64 encoded key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func (m *encryptionMiddleware) Record(ctx context.Context, sessionID string, answer domain.Answer) error {
	if answer.Value != "" {
		ciphertext, err := encrypt([]byte(answer.Value), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt answer: %w", err)
		}
		answer.Value = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Record(ctx, sessionID, answer)
}

func (m *encryptionMiddleware) Answers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	answers, err := m.next.Answers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i, a := range answers {
		if a.Value == "" {
			continue
		}
		encoded, ok := strings.CutPrefix(a.Value, envelopePrefix)
		if !ok {
			// Values written before encryption was enabled cannot be trusted as ciphertext.
			return nil, fmt.Errorf("answer to %s is missing encrypted data envelope", a.QuestionID)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt answer to %s: %w", a.QuestionID, err)
		}
		answers[i].Value = string(plainText)
	}
	return answers, nil
}

func (m *encryptionMiddleware) Clear(ctx context.Context, sessionID string) error {
	return m.next.Clear(ctx, sessionID)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
