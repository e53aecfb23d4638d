package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/questionnaire/internal/dto"
	"github.com/aretw0/questionnaire/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Document formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatFor picks the document format from a file extension. YAML is the default.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ReadQuestions loads a question document (YAML or JSON, bare list or {"questions": [...]}).
// Entries without an id get one from newID; every question is validated.
func ReadQuestions(path string, newID func() string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseQuestions(data, FormatFor(path), newID)
}

// ParseQuestions decodes a question document in the given format.
func ParseQuestions(data []byte, format string, newID func() string) ([]domain.Question, error) {
	var raw any
	if format == FormatJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	doc, err := dto.DecodeDocument(raw)
	if err != nil {
		return nil, err
	}
	for i := range doc.Questions {
		if doc.Questions[i].ID == "" && newID != nil {
			doc.Questions[i].ID = newID()
		}
	}
	questions, err := doc.Entities()
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateList(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

type exportDocument struct {
	Questions []domain.Question `json:"questions" yaml:"questions"`
}

// WriteQuestions writes questions as a {"questions": [...]} document.
func WriteQuestions(w io.Writer, questions []domain.Question, format string) error {
	if questions == nil {
		questions = []domain.Question{}
	}
	doc := exportDocument{Questions: questions}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// PrintQuestions writes a numbered listing.
func PrintQuestions(w io.Writer, questions []domain.Question) {
	if len(questions) == 0 {
		fmt.Fprintln(w, "No questions configured.")
		return
	}
	for i, q := range questions {
		fmt.Fprintf(w, "%d. [%s] %s (%s)\n", i+1, q.ID, q.Text, q.Kind)
		if q.Kind == domain.KindMultipleChoice {
			fmt.Fprintf(w, "   options: %s\n", strings.Join(q.Options, ", "))
		}
	}
}
