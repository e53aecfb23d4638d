package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/internal/dto"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/go-chi/chi/v5"
)

type questionList struct {
	Questions []domain.Question `json:"questions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "questionnaire-http",
		"version":     questionnaire.Version,
		"api_version": apiVersion,
	})
}

// GetSpec serves the embedded OpenAPI document.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(rawSpec)
}

// GetSwaggerUI serves a Swagger UI page for /openapi.yaml.
func (s *Server) GetSwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(swaggerHTML))
}

// ListQuestionnaires handles GET /questionnaires.
func (s *Server) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.Questionnaires(r.Context())
	if err != nil {
		s.writeError(w, r, "ListQuestionnaires", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"questionnaires": ids})
}

func (s *Server) getQuestions(w http.ResponseWriter, r *http.Request, qid string) {
	questions, err := s.Service.Questions(r.Context(), qid)
	if err != nil {
		s.writeError(w, r, "GetQuestions", err)
		return
	}
	writeJSON(w, http.StatusOK, questionList{Questions: questions})
}

func (s *Server) storeQuestions(w http.ResponseWriter, r *http.Request, qid string) {
	var body any
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "StoreQuestions", err)
		return
	}
	doc, err := dto.DecodeDocument(body)
	if err != nil {
		s.writeError(w, r, "StoreQuestions", err)
		return
	}
	questions, err := doc.Entities()
	if err != nil {
		s.writeError(w, r, "StoreQuestions", err)
		return
	}
	if err := s.Service.ReplaceQuestions(r.Context(), qid, questions); err != nil {
		s.writeError(w, r, "StoreQuestions", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Questions stored successfully"})
}

// GetDefaultQuestions handles GET /api/questions.
func (s *Server) GetDefaultQuestions(w http.ResponseWriter, r *http.Request) {
	s.getQuestions(w, r, s.defaultQuestionnaire)
}

// StoreDefaultQuestions handles POST /api/questions.
func (s *Server) StoreDefaultQuestions(w http.ResponseWriter, r *http.Request) {
	s.storeQuestions(w, r, s.defaultQuestionnaire)
}

// GetQuestions handles GET /questionnaires/{qid}/questions.
func (s *Server) GetQuestions(w http.ResponseWriter, r *http.Request) {
	s.getQuestions(w, r, chi.URLParam(r, "qid"))
}

// ReplaceQuestions handles PUT /questionnaires/{qid}/questions.
func (s *Server) ReplaceQuestions(w http.ResponseWriter, r *http.Request) {
	s.storeQuestions(w, r, chi.URLParam(r, "qid"))
}

// AddQuestion handles POST /questionnaires/{qid}/questions.
func (s *Server) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "AddQuestion", err)
		return
	}
	q, err := dto.DecodeQuestion(body)
	if err != nil {
		s.writeError(w, r, "AddQuestion", fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	draft, err := q.Draft()
	if err != nil {
		s.writeError(w, r, "AddQuestion", err)
		return
	}
	added, err := s.Service.AddQuestion(r.Context(), chi.URLParam(r, "qid"), draft)
	if err != nil {
		s.writeError(w, r, "AddQuestion", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) findQuestion(r *http.Request, qid, id string) (domain.Question, error) {
	questions, err := s.Service.Questions(r.Context(), qid)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
}

// GetQuestion handles GET /questionnaires/{qid}/questions/{id}.
func (s *Server) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.findQuestion(r, chi.URLParam(r, "qid"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, "GetQuestion", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// EditQuestion handles PATCH /questionnaires/{qid}/questions/{id}.
func (s *Server) EditQuestion(w http.ResponseWriter, r *http.Request) {
	qid, id := chi.URLParam(r, "qid"), chi.URLParam(r, "id")

	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "EditQuestion", err)
		return
	}
	patch, err := dto.DecodePatch(body)
	if err != nil {
		s.writeError(w, r, "EditQuestion", err)
		return
	}
	if err := s.Service.EditQuestion(r.Context(), qid, id, patch); err != nil {
		s.writeError(w, r, "EditQuestion", err)
		return
	}
	q, err := s.findQuestion(r, qid, id)
	if err != nil {
		s.writeError(w, r, "EditQuestion", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// DeleteQuestion handles DELETE /questionnaires/{qid}/questions/{id}.
func (s *Server) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.DeleteQuestion(r.Context(), chi.URLParam(r, "qid"), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, "DeleteQuestion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// ReorderQuestions handles POST /questionnaires/{qid}/reorder.
func (s *Server) ReorderQuestions(w http.ResponseWriter, r *http.Request) {
	qid := chi.URLParam(r, "qid")

	var body reorderRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "ReorderQuestions", err)
		return
	}
	if body.From == nil || body.To == nil {
		s.writeError(w, r, "ReorderQuestions", fmt.Errorf("%w: from and to are required", errBadRequest))
		return
	}
	if err := s.Service.ReorderQuestions(r.Context(), qid, *body.From, *body.To); err != nil {
		s.writeError(w, r, "ReorderQuestions", err)
		return
	}
	s.getQuestions(w, r, qid)
}

// publish pushes the session view to SSE subscribers.
func (s *Server) publish(rec domain.FlowRecord) domain.SessionView {
	view := rec.View()
	if s.Streams.Subscribers(rec.SessionID) > 0 {
		if data, err := json.Marshal(view); err == nil {
			s.Streams.Broadcast(rec.SessionID, string(data))
		}
	}
	return view
}

// StartSession handles POST /questionnaires/{qid}/sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Service.StartSession(r.Context(), chi.URLParam(r, "qid"))
	if err != nil {
		s.writeError(w, r, "StartSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec.View())
}

// GetSession handles GET /sessions/{sid}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Service.Session(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, rec.View())
}

// DeleteSession handles DELETE /sessions/{sid}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.DeleteSession(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.writeError(w, r, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Value string `json:"value"`
}

// AnswerQuestion handles POST /sessions/{sid}/answer.
func (s *Server) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "AnswerQuestion", err)
		return
	}

	value, err := domain.CleanAnswer(body.Value, s.maxInputSize)
	if err != nil {
		s.logger.Warn("AnswerQuestion: Input rejected", "err", err, "size", len(body.Value))
		s.writeError(w, r, "AnswerQuestion", err)
		return
	}

	rec, err := s.Service.Answer(r.Context(), chi.URLParam(r, "sid"), value)
	if err != nil {
		s.writeError(w, r, "AnswerQuestion", err)
		return
	}
	writeJSON(w, http.StatusOK, s.publish(rec))
}

// SkipQuestion handles POST /sessions/{sid}/skip.
func (s *Server) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Service.Skip(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, "SkipQuestion", err)
		return
	}
	writeJSON(w, http.StatusOK, s.publish(rec))
}

// GetAnswers handles GET /sessions/{sid}/answers.
func (s *Server) GetAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := s.Service.Answers(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, "GetAnswers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Answer{"answers": answers})
}

// SubscribeSession handles GET /sessions/{sid}/events (SSE).
// The current view is sent first; the stream ends once the session completes.
func (s *Server) SubscribeSession(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeSession: Streaming not supported")
		return
	}

	// Subscribe before reading the record so no update is lost in between.
	ch, cancel := s.Streams.Subscribe(sid)
	defer cancel()

	rec, err := s.Service.Session(r.Context(), sid)
	if err != nil {
		s.writeError(w, r, "SubscribeSession", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if data, err := json.Marshal(rec.View()); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
	}
	flusher.Flush()
	if rec.Status.Terminal() {
		return
	}

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sid)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sid)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()

			var view domain.SessionView
			if err := json.Unmarshal([]byte(msg), &view); err == nil && view.Status.Terminal() {
				return
			}
		}
	}
}
