package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *questionnaire.Service {
	n := 0
	return questionnaire.New(questionnaire.Stores{}, questionnaire.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("q%d", n)
	}))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetHealthAndInfo(t *testing.T) {
	h := NewHandler(newTestService())

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	w = do(t, h, http.MethodGet, "/info", nil)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "questionnaire-http", info["app"])
	assert.Equal(t, questionnaire.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestSpecCoversRoutes(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	skip := map[string]bool{"/openapi.yaml": true, "/swagger": true}
	router := NewServer(newTestService(), WithMetrics(http.NotFoundHandler())).Routes()

	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if skip[route] {
			return nil
		}
		item := doc.Paths.Value(route)
		if item == nil {
			return fmt.Errorf("route %s missing from openapi.yaml", route)
		}
		if item.GetOperation(method) == nil {
			return fmt.Errorf("operation %s %s missing from openapi.yaml", method, route)
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(newTestService())
	w := do(t, h, http.MethodOptions, "/questionnaires/default/questions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestQuestionLifecycle(t *testing.T) {
	h := NewHandler(newTestService())
	base := "/questionnaires/default/questions"

	w := do(t, h, http.MethodPost, base, map[string]any{"question": "Color?", "type": "text"})
	require.Equal(t, http.StatusCreated, w.Code)
	added := decode[domain.Question](t, w)
	assert.Equal(t, "q1", added.ID)

	w = do(t, h, http.MethodPost, base, map[string]any{"question": "color?"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.MsgDuplicateQuestion, decode[errorResponse](t, w).Error)

	w = do(t, h, http.MethodPost, base, map[string]any{"question": "Age", "type": "multiple-choice", "options": "young,old"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, base, map[string]any{"question": "Pets", "type": "multiple-choice", "options": "a cat,dog"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, domain.MsgInvalidOptions, resp.Error)
	assert.Equal(t, "options", resp.Field)

	w = do(t, h, http.MethodGet, base, nil)
	list := decode[questionList](t, w)
	require.Len(t, list.Questions, 2)

	w = do(t, h, http.MethodPatch, base+"/q1", map[string]any{"question": "Favorite color?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Favorite color?", decode[domain.Question](t, w).Text)

	w = do(t, h, http.MethodPatch, base+"/ghost", map[string]any{"question": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/questionnaires/default/reorder", map[string]any{"from": 0, "to": 1})
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[questionList](t, w)
	assert.Equal(t, "Age", list.Questions[0].Text)

	w = do(t, h, http.MethodPost, "/questionnaires/default/reorder", map[string]any{"from": 0, "to": 9})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/questionnaires/default/reorder", map[string]any{"from": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, base+"/q1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, base+"/q1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, base+"/q1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/questionnaires", nil)
	assert.Equal(t, []string{"default"}, decode[map[string][]string](t, w)["questionnaires"])
}

func TestBadBody(t *testing.T) {
	h := NewHandler(newTestService())
	w := do(t, h, http.MethodPost, "/questionnaires/default/questions", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDefaultQuestionsRoute(t *testing.T) {
	h := NewHandler(newTestService())

	w := do(t, h, http.MethodPost, "/api/questions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Questions are required", decode[errorResponse](t, w).Error)

	payload := map[string]any{"questions": []map[string]any{
		{"id": "1", "question": "What is your favorite color?", "type": "text"},
		{"id": "2", "question": "Select your age range", "type": "multiple-choice", "options": []string{"Under 18", "18-25"}},
	}}
	w = do(t, h, http.MethodPost, "/api/questions", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Questions stored successfully", decode[messageResponse](t, w).Message)

	w = do(t, h, http.MethodGet, "/api/questions", nil)
	list := decode[questionList](t, w)
	require.Len(t, list.Questions, 2)
	assert.Equal(t, "2", list.Questions[1].ID)

	w = do(t, h, http.MethodGet, "/questionnaires/default/questions", nil)
	assert.Len(t, decode[questionList](t, w).Questions, 2, "legacy route writes the default questionnaire")

	dup := map[string]any{"questions": []map[string]any{
		{"id": "1", "question": "Same"},
		{"id": "2", "question": "same"},
	}}
	w = do(t, h, http.MethodPut, "/questionnaires/default/questions", dup)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRespondentSession(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	ctx := context.Background()

	_, err := svc.AddQuestion(ctx, "default", domain.Draft{Text: "Q1"})
	require.NoError(t, err)
	_, err = svc.AddQuestion(ctx, "default", domain.Draft{Text: "Q2", Kind: domain.KindMultipleChoice, Options: []string{"yes", "no"}})
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/questionnaires/default/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[domain.SessionView](t, w)
	assert.Equal(t, domain.StatusAnswering, view.Status)
	assert.Equal(t, 2, view.Total)
	require.NotNil(t, view.Current)
	assert.Equal(t, "Q1", view.Current.Text)

	path := "/sessions/" + view.SessionID

	w = do(t, h, http.MethodPost, path+"/answer", map[string]string{"value": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, path+"/answer", map[string]string{"value": "Blue\x1b"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[domain.SessionView](t, w)
	assert.Equal(t, "Q2", view.Current.Text)

	w = do(t, h, http.MethodPost, path+"/skip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[domain.SessionView](t, w)
	assert.Equal(t, domain.StatusCompleted, view.Status)
	assert.Nil(t, view.Current)

	w = do(t, h, http.MethodPost, path+"/skip", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, path+"/answers", nil)
	answers := decode[map[string][]domain.Answer](t, w)["answers"]
	require.Len(t, answers, 2)
	assert.Equal(t, "Blue", answers[0].Value, "control characters are stripped")
	assert.True(t, answers[1].Skipped)

	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartEmptySession(t *testing.T) {
	h := NewHandler(newTestService())
	w := do(t, h, http.MethodPost, "/questionnaires/empty/sessions", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAnswerTooLarge(t *testing.T) {
	svc := newTestService()
	_, err := svc.AddQuestion(context.Background(), "default", domain.Draft{Text: "Q1"})
	require.NoError(t, err)
	rec, err := svc.StartSession(context.Background(), "default")
	require.NoError(t, err)

	h := NewHandler(svc, WithMaxInputSize(5))
	w := do(t, h, http.MethodPost, "/sessions/"+rec.SessionID+"/answer", map[string]string{"value": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("questionnaire_flows_completed_total 0\n"))
	})
	h := NewHandler(newTestService(), WithMetrics(metrics))

	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "questionnaire_flows_completed_total")

	w = do(t, NewHandler(newTestService()), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.AddQuestion(ctx, "default", domain.Draft{Text: "Only question"})
	require.NoError(t, err)
	rec, err := svc.StartSession(ctx, "default")
	require.NoError(t, err)

	server := NewServer(svc)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, ts.URL+"/sessions/"+rec.SessionID+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	nextData := func() domain.SessionView {
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: {") {
				continue
			}
			var v domain.SessionView
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &v))
			return v
		}
		t.Fatalf("stream ended: %v", scanner.Err())
		return domain.SessionView{}
	}

	first := nextData()
	assert.Equal(t, domain.StatusAnswering, first.Status)

	w := do(t, server.Routes(), http.MethodPost, "/sessions/"+rec.SessionID+"/answer", map[string]string{"value": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	second := nextData()
	assert.Equal(t, domain.StatusCompleted, second.Status)
}

func TestSubscribeUnknownSession(t *testing.T) {
	h := NewHandler(newTestService())
	w := do(t, h, http.MethodGet, "/sessions/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Err: domain.ErrDuplicateQuestion}, http.StatusUnprocessableEntity},
		{&domain.PreconditionError{Err: domain.ErrIndexOutOfRange}, http.StatusConflict},
		{fmt.Errorf("wrap: %w", domain.ErrSessionNotFound), http.StatusNotFound},
		{domain.ErrQuestionNotFound, http.StatusNotFound},
		{domain.ErrEmptyFlow, http.StatusConflict},
		{fmt.Errorf("%w: SKIP in completed", domain.ErrInvalidEvent), http.StatusConflict},
		{domain.ErrAnswerTooLarge, http.StatusBadRequest},
		{domain.ErrAnswerEncoding, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
