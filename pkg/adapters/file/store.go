package file

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/aretw0/questionnaire/pkg/domain"
)

var errNoAnswers = errors.New("no answers recorded")

// DefaultBasePath is used when no directory is configured.
var DefaultBasePath = ".questionnaire"

func base(basePath, sub string) string {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return filepath.Join(basePath, sub)
}

// questionDocument is the on-disk shape of a questionnaire, matching the
// {"questions": [...]} payload of the HTTP API.
type questionDocument struct {
	Questions []domain.Question `json:"questions"`
}

// QuestionStore implements ports.QuestionStore using the local filesystem.
// Each questionnaire is one JSON file under <base>/questionnaires.
type QuestionStore struct {
	BasePath string
}

// NewQuestionStore creates a QuestionStore rooted at basePath.
// If basePath is empty, it defaults to ".questionnaire".
func NewQuestionStore(basePath string) *QuestionStore {
	return &QuestionStore{BasePath: base(basePath, "questionnaires")}
}

func (s *QuestionStore) Save(ctx context.Context, questionnaireID string, questions []domain.Question) error {
	if err := validateKey("questionnaireID", questionnaireID); err != nil {
		return err
	}
	return writeJSON(s.BasePath, questionnaireID, questionDocument{Questions: domain.CloneQuestions(questions)})
}

func (s *QuestionStore) Load(ctx context.Context, questionnaireID string) ([]domain.Question, error) {
	if err := validateKey("questionnaireID", questionnaireID); err != nil {
		return nil, err
	}
	var doc questionDocument
	if err := readJSON(s.BasePath, questionnaireID, &doc, domain.ErrQuestionnaireNotFound); err != nil {
		return nil, err
	}
	return domain.CloneQuestions(doc.Questions), nil
}

func (s *QuestionStore) Delete(ctx context.Context, questionnaireID string) error {
	if err := validateKey("questionnaireID", questionnaireID); err != nil {
		return err
	}
	return removeJSON(s.BasePath, questionnaireID)
}

func (s *QuestionStore) List(ctx context.Context) ([]string, error) {
	return listJSON(s.BasePath)
}

// SessionStore implements ports.SessionStore using the local filesystem.
// It stores flow records as JSON files under <base>/sessions.
type SessionStore struct {
	BasePath string
}

// NewSessionStore creates a SessionStore rooted at basePath.
func NewSessionStore(basePath string) *SessionStore {
	return &SessionStore{BasePath: base(basePath, "sessions")}
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error {
	if err := validateKey("sessionID", sessionID); err != nil {
		return err
	}
	return writeJSON(s.BasePath, sessionID, rec)
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.FlowRecord, error) {
	if err := validateKey("sessionID", sessionID); err != nil {
		return domain.FlowRecord{}, err
	}
	var rec domain.FlowRecord
	if err := readJSON(s.BasePath, sessionID, &rec, domain.ErrSessionNotFound); err != nil {
		return domain.FlowRecord{}, err
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := validateKey("sessionID", sessionID); err != nil {
		return err
	}
	return removeJSON(s.BasePath, sessionID)
}

// List returns all stored session IDs.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	return listJSON(s.BasePath)
}

// AnswerStore implements ports.AnswerStore using the local filesystem.
// Each session's answers are one JSON array under <base>/answers.
// Record is a read-modify-write guarded by a process-local mutex.
type AnswerStore struct {
	BasePath string
	mu       sync.Mutex
}

// NewAnswerStore creates an AnswerStore rooted at basePath.
func NewAnswerStore(basePath string) *AnswerStore {
	return &AnswerStore{BasePath: base(basePath, "answers")}
}

func (s *AnswerStore) Record(ctx context.Context, sessionID string, answer domain.Answer) error {
	if err := validateKey("sessionID", sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	answers, err := s.load(sessionID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range answers {
		if answers[i].QuestionID == answer.QuestionID {
			answers[i] = answer
			replaced = true
			break
		}
	}
	if !replaced {
		answers = append(answers, answer)
	}
	return writeJSON(s.BasePath, sessionID, answers)
}

func (s *AnswerStore) Answers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	if err := validateKey("sessionID", sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(sessionID)
}

func (s *AnswerStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateKey("sessionID", sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeJSON(s.BasePath, sessionID)
}

func (s *AnswerStore) load(sessionID string) ([]domain.Answer, error) {
	var answers []domain.Answer
	if err := readJSON(s.BasePath, sessionID, &answers, errNoAnswers); err != nil {
		if errors.Is(err, errNoAnswers) {
			return []domain.Answer{}, nil
		}
		return nil, err
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}
