package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/questionnaire/internal/dto"
	"github.com/aretw0/questionnaire/pkg/domain"
)

// errBadRequest marks undecodable request bodies.
var errBadRequest = errors.New("invalid request body")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *domain.ValidationError
	var pe *domain.PreconditionError

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, dto.ErrQuestionsRequired),
		errors.Is(err, domain.ErrAnswerTooLarge),
		errors.Is(err, domain.ErrAnswerEncoding):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionnaireNotFound):
		return http.StatusNotFound
	case errors.As(err, &pe),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrEmptyFlow):
		return http.StatusConflict
	case errors.As(err, &ve),
		errors.Is(err, domain.ErrInvalidInitialList),
		errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)

	resp := errorResponse{Error: domain.Message(err)}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if errors.Is(err, dto.ErrQuestionsRequired) {
		resp.Error = "Questions are required"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err, "path", r.URL.Path)
		resp.Error = "internal error"
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON body into v, capping its size.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
