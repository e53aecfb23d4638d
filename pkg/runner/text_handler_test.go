package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answeringView() domain.SessionView {
	return domain.SessionView{
		SessionID: "s1",
		Status:    domain.StatusAnswering,
		Index:     0,
		Total:     2,
		Current: &domain.Question{
			ID:      "q1",
			Text:    "Pick a colour",
			Kind:    domain.KindMultipleChoice,
			Options: []string{"red", "green"},
		},
	}
}

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	needsInput, err := handler.Output(context.Background(), answeringView())
	require.NoError(t, err)
	assert.True(t, needsInput)

	output := outBuf.String()
	assert.True(t, strings.HasPrefix(output, "Rendered: "))
	assert.Contains(t, output, "Question 1 of 2")
	assert.Contains(t, output, "1. red")
	assert.Contains(t, output, "2. green")
}

func TestTextHandler_OutputCompleted(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	needsInput, err := handler.Output(context.Background(), domain.SessionView{Status: domain.StatusCompleted, Total: 2})
	require.NoError(t, err)
	assert.False(t, needsInput)
	assert.Contains(t, outBuf.String(), "All 2 questions done")
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my answer \x1b \n"), outBuf)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my answer ", val, "control characters are stripped after trimming")
	assert.Equal(t, "> ", outBuf.String())

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputTooLargeRetries(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("0123456789\nok\n"), outBuf, WithTextHandlerMaxInputSize(5))

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, outBuf.String(), "Please try again")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	handler := NewTextHandler(strings.NewReader(""), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
