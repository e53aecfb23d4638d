package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// Service is the subset of the questionnaire Service the runner drives.
type Service interface {
	StartSession(ctx context.Context, qid string) (domain.FlowRecord, error)
	Session(ctx context.Context, sid string) (domain.FlowRecord, error)
	Answer(ctx context.Context, sid, value string) (domain.FlowRecord, error)
	Skip(ctx context.Context, sid string) (domain.FlowRecord, error)
}

// LoadOrStart resumes sessionID when it exists, otherwise starts a new session on qid.
// Returns the record and a boolean indicating if it was loaded (true) or new (false).
func LoadOrStart(ctx context.Context, svc Service, sessionID, qid string) (domain.FlowRecord, bool, error) {
	if sessionID != "" {
		rec, err := svc.Session(ctx, sessionID)
		if err == nil {
			return rec, true, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return domain.FlowRecord{}, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
	}

	rec, err := svc.StartSession(ctx, qid)
	if err != nil {
		return domain.FlowRecord{}, false, err
	}
	return rec, false, nil
}
