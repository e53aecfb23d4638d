package domain

import "time"

// Status is the logical state of a respondent flow.
type Status string

const (
	StatusIdle      Status = "idle"      // Constructed, not started
	StatusAnswering Status = "answering" // A question is active
	StatusCompleted Status = "completed" // Terminal
)

// Terminal reports whether no further events are accepted.
func (s Status) Terminal() bool { return s == StatusCompleted }

// Event is an input to the flow state machine.
type Event string

const (
	EventStart  Event = "START"
	EventAnswer Event = "ANSWER"
	EventSkip   Event = "SKIP"
)

// FlowRecord is the durable snapshot of one respondent session.
// It carries its own copy of the questions so a session is unaffected by later edits.
type FlowRecord struct {
	SessionID       string     `json:"session_id"`
	QuestionnaireID string     `json:"questionnaire_id"`
	Status          Status     `json:"status"`
	Index           int        `json:"index"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Current returns the active question, if any.
func (r FlowRecord) Current() (Question, bool) {
	if r.Status != StatusAnswering || r.Index < 0 || r.Index >= len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[r.Index], true
}

// Clone deep copies the record.
func (r FlowRecord) Clone() FlowRecord {
	c := r
	c.Questions = CloneQuestions(r.Questions)
	return c
}

// SessionView is the respondent facing projection of a FlowRecord.
// It exposes only the active question, never the whole list.
type SessionView struct {
	SessionID       string    `json:"session_id"`
	QuestionnaireID string    `json:"questionnaire_id"`
	Status          Status    `json:"status"`
	Index           int       `json:"index"`
	Total           int       `json:"total"`
	Current         *Question `json:"current,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// View projects the record for respondents.
func (r FlowRecord) View() SessionView {
	v := SessionView{
		SessionID:       r.SessionID,
		QuestionnaireID: r.QuestionnaireID,
		Status:          r.Status,
		Index:           r.Index,
		Total:           len(r.Questions),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if q, ok := r.Current(); ok {
		v.Current = &q
	}
	return v
}
