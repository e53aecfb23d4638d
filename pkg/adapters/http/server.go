package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// Service is the questionnaire host driven by the HTTP transport.
type Service interface {
	Questionnaires(ctx context.Context) ([]string, error)
	Questions(ctx context.Context, qid string) ([]domain.Question, error)
	ReplaceQuestions(ctx context.Context, qid string, questions []domain.Question) error
	AddQuestion(ctx context.Context, qid string, d domain.Draft) (domain.Question, error)
	EditQuestion(ctx context.Context, qid, id string, p domain.Patch) error
	DeleteQuestion(ctx context.Context, qid, id string) error
	ReorderQuestions(ctx context.Context, qid string, from, to int) error

	StartSession(ctx context.Context, qid string) (domain.FlowRecord, error)
	Session(ctx context.Context, sid string) (domain.FlowRecord, error)
	Answer(ctx context.Context, sid, value string) (domain.FlowRecord, error)
	Skip(ctx context.Context, sid string) (domain.FlowRecord, error)
	Answers(ctx context.Context, sid string) ([]domain.Answer, error)
	DeleteSession(ctx context.Context, sid string) error
}

// Server holds the HTTP handlers.
type Server struct {
	Service Service
	Streams *StreamManager

	defaultQuestionnaire string
	metrics              http.Handler
	maxInputSize         int
	logger               *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultQuestionnaire sets the questionnaire behind /api/questions.
func WithDefaultQuestionnaire(qid string) Option {
	return func(s *Server) {
		if qid != "" {
			s.defaultQuestionnaire = qid
		}
	}
}

// WithMaxInputSize sets the answer size limit. Zero keeps domain.DefaultMaxAnswerSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a Server for svc.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		Service:              svc,
		Streams:              NewStreamManager(),
		defaultQuestionnaire: "default",
		logger:               slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers every endpoint on a chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/swagger", s.GetSwaggerUI)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Route of the original single-questionnaire application.
	r.Get("/api/questions", s.GetDefaultQuestions)
	r.Post("/api/questions", s.StoreDefaultQuestions)

	r.Get("/questionnaires", s.ListQuestionnaires)
	r.Route("/questionnaires/{qid}", func(r chi.Router) {
		r.Get("/questions", s.GetQuestions)
		r.Put("/questions", s.ReplaceQuestions)
		r.Post("/questions", s.AddQuestion)
		r.Get("/questions/{id}", s.GetQuestion)
		r.Patch("/questions/{id}", s.EditQuestion)
		r.Delete("/questions/{id}", s.DeleteQuestion)
		r.Post("/reorder", s.ReorderQuestions)
		r.Post("/sessions", s.StartSession)
	})

	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/answer", s.AnswerQuestion)
		r.Post("/skip", s.SkipQuestion)
		r.Get("/answers", s.GetAnswers)
		r.Get("/events", s.SubscribeSession)
	})
	return r
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	return enableCORS(NewServer(svc, opts...).Routes())
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Questionnaire API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
