package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Output(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)

	needsInput, err := handler.Output(context.Background(), answeringView())
	require.NoError(t, err)
	assert.True(t, needsInput)

	require.NoError(t, handler.SystemOutput(context.Background(), "hello"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &frame))
	assert.Equal(t, FrameSession, frame.Type)
	require.NotNil(t, frame.Session)
	require.NotNil(t, frame.Session.Current)
	assert.Equal(t, "Pick a colour", frame.Session.Current.Text)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &frame))
	assert.Equal(t, FrameSystem, frame.Type)
	assert.Equal(t, "hello", frame.Message)
}

func TestJSONHandler_Input(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("\"quoted value\"\nraw value\nlast"), &bytes.Buffer{})
	ctx := context.Background()

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "quoted value", val)

	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "raw value", val)

	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last", val, "final line without newline is still read")

	_, err = handler.Input(ctx)
	assert.Error(t, err)
}

func TestJSONHandler_OutputCompleted(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader(""), &bytes.Buffer{})
	needsInput, err := handler.Output(context.Background(), domain.SessionView{Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.False(t, needsInput)
}

func TestJSONHandler_InputPolicy(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("\"abcdef\"\n\"a\\u001bb\"\n"), &bytes.Buffer{}, WithJSONHandlerMaxInputSize(5))
	ctx := context.Background()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, domain.ErrAnswerTooLarge)

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab", val, "control characters decoded from JSON are dropped")
}
