package domain

import (
	"fmt"
	"strings"
)

// Kind is the closed set of question variants.
type Kind string

const (
	KindText           Kind = "text"            // Free text answer
	KindMultipleChoice Kind = "multiple-choice" // Pick one of Options
)

// ParseKind maps raw input onto a Kind.
// It accepts the canonical names plus a few spellings seen in imported documents.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text", "":
		return KindText, nil
	case "multiple-choice", "multiple_choice", "multiplechoice", "mcq":
		return KindMultipleChoice, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
}

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	return k == KindText || k == KindMultipleChoice
}

// Question is an authored prompt.
type Question struct {
	// ID is stable for the lifetime of the question and never reused.
	ID string `json:"id" yaml:"id"`

	// Text is the prompt shown to respondents.
	Text string `json:"question" yaml:"question"`

	// Kind selects how the question is answered.
	Kind Kind `json:"type" yaml:"type"`

	// Options lists the choices of a multiple choice question, empty otherwise.
	Options []string `json:"options" yaml:"options"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	return c
}

// TextKey is the comparison key of a prompt: trimmed and lower-cased.
// Two questions whose keys are equal render the same prompt.
func TextKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// SameText reports whether two prompts collide under the case-insensitive uniqueness rule.
func SameText(a, b string) bool {
	return TextKey(a) == TextKey(b)
}

// CloneQuestions deep copies a question list. A nil input yields an empty, non-nil slice.
func CloneQuestions(in []Question) []Question {
	out := make([]Question, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}

// Draft is unvalidated input for a new question.
type Draft struct {
	Text    string
	Kind    Kind
	Options []string
}

// Patch carries the fields of an edit. Nil fields are left untouched.
type Patch struct {
	Text    *string
	Kind    *Kind
	Options *[]string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Text == nil && p.Kind == nil && p.Options == nil
}

// Apply merges the patch into a copy of q and normalizes options for the resulting kind.
func (p Patch) Apply(q Question) Question {
	out := q.Clone()
	if p.Text != nil {
		out.Text = strings.TrimSpace(*p.Text)
	}
	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if p.Options != nil {
		out.Options = append([]string(nil), (*p.Options)...)
	}
	out.Options = NormalizeOptions(out.Kind, out.Options)
	return out
}
