package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrQuestionsRequired is returned when a document has no "questions" key.
var ErrQuestionsRequired = errors.New("questions are required")

// Question is the loosely typed shape of a question in import files, HTTP
// bodies and MCP arguments. Options may be a list or a comma separated string.
type Question struct {
	ID      string `json:"id" mapstructure:"id"`
	Text    string `json:"question" mapstructure:"question"`
	Type    string `json:"type" mapstructure:"type"`
	Options any    `json:"options" mapstructure:"options"`
}

// Document wraps a list of questions, matching the {"questions": [...]} payload.
type Document struct {
	Questions []Question `json:"questions" mapstructure:"questions"`
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeQuestion decodes a single question from a generic map.
func DecodeQuestion(input map[string]any) (Question, error) {
	var q Question
	if err := decode(input, &q); err != nil {
		return Question{}, fmt.Errorf("invalid question: %w", err)
	}
	// "text" is accepted as an alias of "question".
	if q.Text == "" {
		if text, ok := input["text"].(string); ok {
			q.Text = text
		}
	}
	return q, nil
}

// DecodeDocument decodes a whole question document.
// A bare list is accepted as well as an object with a "questions" key.
func DecodeDocument(input any) (Document, error) {
	var raw []any
	switch v := input.(type) {
	case []any:
		raw = v
	case map[string]any:
		list, ok := v["questions"]
		if !ok || list == nil {
			return Document{}, ErrQuestionsRequired
		}
		items, ok := list.([]any)
		if !ok {
			return Document{}, fmt.Errorf("questions must be a list, got %T", list)
		}
		raw = items
	default:
		return Document{}, ErrQuestionsRequired
	}

	doc := Document{Questions: make([]Question, 0, len(raw))}
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("question %d must be an object, got %T", i, item)
		}
		q, err := DecodeQuestion(m)
		if err != nil {
			return Document{}, fmt.Errorf("question %d: %w", i, err)
		}
		doc.Questions = append(doc.Questions, q)
	}
	return doc, nil
}

// options returns the option list and whether it came from a raw string.
func (q Question) options() ([]string, string, bool, error) {
	switch v := q.Options.(type) {
	case nil:
		return nil, "", false, nil
	case string:
		return nil, v, true, nil
	case []string:
		return v, "", false, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		return out, "", false, nil
	default:
		return nil, "", false, &domain.ValidationError{
			Field:   "options",
			Message: fmt.Sprintf("options must be a list or a comma separated string, got %T", v),
			Err:     domain.ErrInvalidOptions,
		}
	}
}

// Draft converts the question into authoring input. A string of options goes
// through the same parser as the authoring form.
func (q Question) Draft() (domain.Draft, error) {
	list, raw, isRaw, err := q.options()
	if err != nil {
		return domain.Draft{}, err
	}
	if isRaw {
		return domain.ParseDraft(q.Text, q.Type, raw)
	}

	kind, err := domain.ParseKind(q.Type)
	if err != nil {
		return domain.Draft{}, &domain.ValidationError{Field: "type", Message: err.Error(), Err: domain.ErrInvalidKind}
	}
	return domain.Draft{Text: strings.TrimSpace(q.Text), Kind: kind, Options: domain.NormalizeOptions(kind, list)}, nil
}

// Entity converts the question into a stored entity, checking its invariants.
func (q Question) Entity() (domain.Question, error) {
	d, err := q.Draft()
	if err != nil {
		return domain.Question{}, err
	}
	e := domain.Question{ID: strings.TrimSpace(q.ID), Text: d.Text, Kind: d.Kind, Options: d.Options}
	if err := domain.ValidateQuestion(e); err != nil {
		return domain.Question{}, err
	}
	return e, nil
}

// Entities converts every question of the document.
func (d Document) Entities() ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(d.Questions))
	for i, q := range d.Questions {
		e, err := q.Entity()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// DecodePatch builds a patch from the keys present in input.
// Absent keys leave the corresponding field untouched.
func DecodePatch(input map[string]any) (domain.Patch, error) {
	q, err := DecodeQuestion(input)
	if err != nil {
		return domain.Patch{}, err
	}

	var p domain.Patch
	if _, ok := input["question"]; ok {
		p.Text = &q.Text
	} else if _, ok := input["text"]; ok {
		p.Text = &q.Text
	}
	if _, ok := input["type"]; ok {
		kind, err := domain.ParseKind(q.Type)
		if err != nil {
			return domain.Patch{}, &domain.ValidationError{Field: "type", Message: err.Error(), Err: domain.ErrInvalidKind}
		}
		p.Kind = &kind
	}
	if _, ok := input["options"]; ok {
		list, raw, isRaw, err := q.options()
		if err != nil {
			return domain.Patch{}, err
		}
		if isRaw && strings.TrimSpace(raw) == "" {
			list = nil
		} else if isRaw {
			list, err = domain.ParseOptions(raw)
			if err != nil {
				return domain.Patch{}, err
			}
		}
		p.Options = &list
	}
	return p, nil
}
