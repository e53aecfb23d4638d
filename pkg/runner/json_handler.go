package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/questionnaire/pkg/domain"
)

// Frame types emitted by JSONHandler.
const (
	FrameSession = "session"
	FrameSystem  = "system"
)

// Frame is one JSON line written by JSONHandler.
type Frame struct {
	Type    string              `json:"type"`
	Session *domain.SessionView `json:"session,omitempty"`
	Message string              `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader       *bufio.Reader
	Writer       io.Writer
	Encoder      *json.Encoder
	MaxInputSize int
}

// JSONHandlerOption configures a JSONHandler.
type JSONHandlerOption func(*JSONHandler)

// WithJSONHandlerMaxInputSize overrides domain.DefaultMaxAnswerSize.
func WithJSONHandlerMaxInputSize(limit int) JSONHandlerOption {
	return func(h *JSONHandler) {
		h.MaxInputSize = limit
	}
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer, opts ...JSONHandlerOption) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *JSONHandler) Output(ctx context.Context, view domain.SessionView) (bool, error) {
	if err := h.Encoder.Encode(Frame{Type: FrameSession, Session: &view}); err != nil {
		return false, err
	}
	return view.Status == domain.StatusAnswering, nil
}

// Input reads one line. A JSON string is unquoted; anything else is taken verbatim.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return domain.CleanAnswer(text, h.MaxInputSize)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{Type: FrameSystem, Message: msg})
}
