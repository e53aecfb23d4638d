package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(questionnaire.New(questionnaire.Stores{}), "")
}

func TestServer_ToolsList(t *testing.T) {
	s := newTestServer(t)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{
		"list_questions", "add_question", "edit_question", "delete_question",
		"reorder_questions", "start_session", "get_session", "answer", "skip", "get_answers",
	} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}

func TestServer_Authoring(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	first, err := s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "What is your name?"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindText, first.Kind)

	second, err := s.handleAddQuestion(ctx, req, map[string]interface{}{
		"question": "Favourite colour?",
		"type":     "multiple-choice",
		"options":  "red, green",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green"}, second.Options)

	_, err = s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "what is your NAME?"})
	require.Error(t, err)

	list, err := s.handleReorder(ctx, req, map[string]interface{}{"from": float64(1), "to": float64(0)})
	require.NoError(t, err)
	require.Len(t, list.Questions, 2)
	assert.Equal(t, second.ID, list.Questions[0].ID)

	list, err = s.handleEditQuestion(ctx, req, map[string]interface{}{"id": first.ID, "question": "Full name?"})
	require.NoError(t, err)
	assert.Equal(t, "Full name?", list.Questions[1].Text)

	list, err = s.handleDeleteQuestion(ctx, req, map[string]interface{}{"id": second.ID})
	require.NoError(t, err)
	require.Len(t, list.Questions, 1)

	_, err = s.handleDeleteQuestion(ctx, req, map[string]interface{}{"id": "missing"})
	require.Error(t, err)

	_, err = s.handleReorder(ctx, req, map[string]interface{}{"from": float64(0)})
	require.Error(t, err)
}

func TestServer_QuestionnaireArgument(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "Q", "questionnaire_id": "survey"})
	require.NoError(t, err)

	other, err := s.handleListQuestions(ctx, req, map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, other.Questions)

	survey, err := s.handleListQuestions(ctx, req, map[string]interface{}{"questionnaire_id": "survey"})
	require.NoError(t, err)
	assert.Len(t, survey.Questions, 1)
}

func TestServer_RespondentFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStartSession(ctx, req, map[string]interface{}{})
	require.Error(t, err, "empty questionnaire cannot start")

	_, err = s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "Name?"})
	require.NoError(t, err)
	_, err = s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "Age?", "type": "multiple-choice", "options": "young,old"})
	require.NoError(t, err)

	view, err := s.handleStartSession(ctx, req, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnswering, view.Status)
	require.NotNil(t, view.Current)
	assert.Equal(t, "Name?", view.Current.Text)
	sid := view.SessionID

	view, err = s.handleAnswer(ctx, req, map[string]interface{}{"session_id": sid, "value": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)

	_, err = s.handleAnswer(ctx, req, map[string]interface{}{"session_id": sid, "value": "ancient"})
	require.Error(t, err, "value outside the options")

	view, err = s.handleSkip(ctx, req, map[string]interface{}{"session_id": sid})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, view.Status)
	assert.Nil(t, view.Current)

	got, err := s.handleGetSession(ctx, req, map[string]interface{}{"session_id": sid})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	answers, err := s.handleGetAnswers(ctx, req, map[string]interface{}{"session_id": sid})
	require.NoError(t, err)
	require.Len(t, answers.Answers, 1)
	assert.Equal(t, "Ada", answers.Answers[0].Value)

	_, err = s.handleGetSession(ctx, req, map[string]interface{}{"session_id": "nope"})
	require.Error(t, err)
	_, err = s.handleGetSession(ctx, req, map[string]interface{}{})
	require.Error(t, err)
}

func TestServer_AnswerSanitized(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "Name?"})
	require.NoError(t, err)
	view, err := s.handleStartSession(ctx, req, map[string]interface{}{})
	require.NoError(t, err)

	_, err = s.handleAnswer(ctx, req, map[string]interface{}{"session_id": view.SessionID, "value": "bad\xffvalue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input rejected")
}

func TestServer_AnswerSizeLimit(t *testing.T) {
	s := NewServer(questionnaire.New(questionnaire.Stores{}), "", WithMaxInputSize(4))
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "Name?"})
	require.NoError(t, err)
	view, err := s.handleStartSession(ctx, req, map[string]interface{}{})
	require.NoError(t, err)

	_, err = s.handleAnswer(ctx, req, map[string]interface{}{"session_id": view.SessionID, "value": "Grace"})
	require.ErrorIs(t, err, domain.ErrAnswerTooLarge)

	next, err := s.handleAnswer(ctx, req, map[string]interface{}{"session_id": view.SessionID, "value": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, next.Status)
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    int
		wantErr bool
	}{
		{"whole float", float64(2), 2, false},
		{"negative whole float", float64(-1), -1, false},
		{"int", 3, 3, false},
		{"numeric string", "4", 4, false},
		{"fraction", 0.9, 0, true},
		{"too large", 1e300, 0, true},
		{"bad string", "one", 0, true},
		{"missing", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{}
			if tt.value != nil {
				args["from"] = tt.value
			}
			got, err := intArg(args, "from")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_ReorderRejectsFraction(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	a, err := s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "A?"})
	require.NoError(t, err)
	_, err = s.handleAddQuestion(ctx, req, map[string]interface{}{"question": "B?"})
	require.NoError(t, err)

	_, err = s.handleReorder(ctx, req, map[string]interface{}{"from": 0.9, "to": float64(1)})
	require.ErrorContains(t, err, "whole number")

	list, err := s.handleListQuestions(ctx, req, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, a.ID, list.Questions[0].ID)
}
