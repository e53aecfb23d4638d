package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use.
type SessionStore struct {
	data map[string]domain.FlowRecord
	mu   sync.RWMutex
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]domain.FlowRecord),
	}
}

// Save persists the record in memory.
func (s *SessionStore) Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error {
	// Deep copy so later mutation of rec.Questions does not leak into the store
	copied := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the record from memory.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.FlowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[sessionID]
	if !ok {
		return domain.FlowRecord{}, domain.ErrSessionNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored sessions.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// QuestionStore implements ports.QuestionStore in memory.
type QuestionStore struct {
	data map[string][]domain.Question
	mu   sync.RWMutex
}

// NewQuestionStore creates a new in-memory question store.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		data: make(map[string][]domain.Question),
	}
}

// Save replaces the list stored under questionnaireID.
func (s *QuestionStore) Save(ctx context.Context, questionnaireID string, questions []domain.Question) error {
	copied := domain.CloneQuestions(questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[questionnaireID] = copied
	return nil
}

// Load returns a copy of the stored list.
func (s *QuestionStore) Load(ctx context.Context, questionnaireID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions, ok := s.data[questionnaireID]
	if !ok {
		return nil, domain.ErrQuestionnaireNotFound
	}
	return domain.CloneQuestions(questions), nil
}

// Delete removes a questionnaire.
func (s *QuestionStore) Delete(ctx context.Context, questionnaireID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, questionnaireID)
	return nil
}

// List returns stored questionnaire IDs.
func (s *QuestionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AnswerStore implements ports.AnswerStore in memory.
type AnswerStore struct {
	data map[string][]domain.Answer
	mu   sync.RWMutex
}

// NewAnswerStore creates a new in-memory answer store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		data: make(map[string][]domain.Answer),
	}
}

// Record stores an answer, replacing an earlier answer to the same question in place.
func (s *AnswerStore) Record(ctx context.Context, sessionID string, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := s.data[sessionID]
	for i := range answers {
		if answers[i].QuestionID == answer.QuestionID {
			answers[i] = answer
			return nil
		}
	}
	s.data[sessionID] = append(answers, answer)
	return nil
}

// Answers returns a copy of the session's answers.
func (s *AnswerStore) Answers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := s.data[sessionID]
	out := make([]domain.Answer, len(answers))
	copy(out, answers)
	return out, nil
}

// Clear removes all answers of a session.
func (s *AnswerStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
