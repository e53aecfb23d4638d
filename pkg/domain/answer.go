package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxAnswerSize bounds a raw answer, in bytes, when no limit is configured.
const DefaultMaxAnswerSize = 4096

// Answer is a respondent's response to one question.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Value      string    `json:"value,omitempty"`
	Skipped    bool      `json:"skipped,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// CleanAnswer applies the input policy to a raw response before ValidateAnswer sees it.
// Oversize or non UTF-8 input is rejected rather than truncated. Control characters other
// than newline, tab and carriage return are dropped so they never reach stores or terminals.
// A non-positive limit means DefaultMaxAnswerSize.
func CleanAnswer(raw string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxAnswerSize
	}
	if len(raw) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrAnswerTooLarge, len(raw), limit)
	}
	if !utf8.ValidString(raw) {
		return "", ErrAnswerEncoding
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, raw), nil
}

// ValidateAnswer checks a response against the question it answers and returns
// the canonical value to record. Multiple choice answers match options case-insensitively
// and are recorded with the option's spelling.
func ValidateAnswer(q Question, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &ValidationError{Field: "value", Message: MsgAnswerRequired, Err: ErrInvalidAnswer}
	}

	if q.Kind != KindMultipleChoice {
		return value, nil
	}
	for _, opt := range q.Options {
		if strings.EqualFold(opt, value) {
			return opt, nil
		}
	}
	return "", &ValidationError{
		Field:   "value",
		Message: "Please choose one of: " + strings.Join(q.Options, ", "),
		Err:     ErrInvalidAnswer,
	}
}
