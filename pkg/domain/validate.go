package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MinOptions is the smallest number of choices a multiple choice question may have.
const MinOptions = 2

// ParseOptions splits a comma separated options field.
// Every entry is trimmed; empty entries, entries with inner whitespace and lists
// shorter than MinOptions are rejected.
func ParseOptions(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ValidationError{Field: "options", Message: MsgOptionsRequired, Err: ErrInvalidOptions}
	}

	parts := strings.Split(raw, ",")
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		opt := strings.TrimSpace(part)
		if opt == "" || strings.IndexFunc(opt, unicode.IsSpace) >= 0 {
			return nil, &ValidationError{Field: "options", Message: MsgInvalidOptions, Err: ErrInvalidOptions}
		}
		options = append(options, opt)
	}

	if len(options) < MinOptions {
		return nil, &ValidationError{Field: "options", Message: MsgInvalidOptions, Err: ErrInvalidOptions}
	}
	return options, nil
}

// ParseDraft turns raw form values into a Draft.
// Options are only parsed for multiple choice questions; for text questions rawOptions is ignored.
func ParseDraft(text, kind, rawOptions string) (Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Draft{}, &ValidationError{Field: "question", Message: MsgQuestionRequired, Err: ErrInvalidQuestion}
	}

	k, err := ParseKind(kind)
	if err != nil {
		return Draft{}, &ValidationError{Field: "type", Message: err.Error(), Err: ErrInvalidKind}
	}

	d := Draft{Text: text, Kind: k}
	if k == KindMultipleChoice {
		opts, err := ParseOptions(rawOptions)
		if err != nil {
			return Draft{}, err
		}
		d.Options = opts
	}
	return d, nil
}

// NormalizeOptions makes options consistent with kind: text questions carry none,
// multiple choice options are trimmed copies.
func NormalizeOptions(kind Kind, options []string) []string {
	if kind != KindMultipleChoice {
		return nil
	}
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, strings.TrimSpace(opt))
	}
	return out
}

// ValidateQuestion checks the entity invariants of a single question.
// List-level invariants (unique IDs and texts) are checked by ValidateList.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "question", Message: MsgQuestionRequired, Err: ErrInvalidQuestion}
	}
	if !q.Kind.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown question type %q", q.Kind), Err: ErrInvalidKind}
	}

	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) < MinOptions {
			return &ValidationError{Field: "options", Message: MsgInvalidOptions, Err: ErrInvalidOptions}
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return &ValidationError{Field: "options", Message: MsgInvalidOptions, Err: ErrInvalidOptions}
			}
		}
	case KindText:
		if len(q.Options) > 0 {
			return &ValidationError{Field: "options", Message: "text questions cannot have options", Err: ErrInvalidOptions}
		}
	}
	return nil
}

// ValidateList checks every question plus ID and case-insensitive text uniqueness.
func ValidateList(questions []Question) error {
	ids := make(map[string]struct{}, len(questions))
	texts := make(map[string]struct{}, len(questions))

	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidInitialList, i)
		}
		if err := ValidateQuestion(q); err != nil {
			return fmt.Errorf("%w: question %s: %w", ErrInvalidInitialList, q.ID, err)
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidInitialList, q.ID)
		}
		key := TextKey(q.Text)
		if _, dup := texts[key]; dup {
			return fmt.Errorf("%w: %w: %q", ErrInvalidInitialList, ErrDuplicateQuestion, q.Text)
		}
		ids[q.ID] = struct{}{}
		texts[key] = struct{}{}
	}
	return nil
}
