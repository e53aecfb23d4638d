package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/ports"
)

// Mask replaces every match of a PII pattern.
const Mask = "***"

// Common patterns for NewPIIMiddleware.
const (
	PatternEmail = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	PatternSSN   = `\b\d{3}-\d{2}-\d{4}\b`
)

type piiMiddleware struct {
	next     ports.AnswerStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks parts of answer values matching the patterns
// before they reach the store. Masking is one way: Answers returns the masked text.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.AnswerStore) ports.AnswerStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Record(ctx context.Context, sessionID string, answer domain.Answer) error {
	for _, p := range m.patterns {
		answer.Value = p.ReplaceAllString(answer.Value, Mask)
	}
	return m.next.Record(ctx, sessionID, answer)
}

func (m *piiMiddleware) Answers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	return m.next.Answers(ctx, sessionID)
}

func (m *piiMiddleware) Clear(ctx context.Context, sessionID string) error {
	return m.next.Clear(ctx, sessionID)
}
