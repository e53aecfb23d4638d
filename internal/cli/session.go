package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/pkg/domain"
)

// SessionReport is what `session inspect` prints.
type SessionReport struct {
	Session domain.SessionView `json:"session"`
	Answers []domain.Answer    `json:"answers"`
}

// InspectSession loads a session and its answers.
func InspectSession(ctx context.Context, svc *questionnaire.Service, sid string) (SessionReport, error) {
	rec, err := svc.Session(ctx, sid)
	if err != nil {
		return SessionReport{}, fmt.Errorf("error loading session '%s': %w", sid, err)
	}
	answers, err := svc.Answers(ctx, sid)
	if err != nil {
		return SessionReport{}, fmt.Errorf("error loading answers of '%s': %w", sid, err)
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return SessionReport{Session: rec.View(), Answers: answers}, nil
}

// PrintJSON pretty prints v.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
