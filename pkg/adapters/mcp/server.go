package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/questionnaire"
	"github.com/aretw0/questionnaire/internal/dto"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// QuestionList aligns with the {"questions": [...]} payload of the HTTP API.
type QuestionList struct {
	Questions []domain.Question `json:"questions" jsonschema_description:"Ordered question list"`
}

// AnswerList carries the recorded answers of a session.
type AnswerList struct {
	Answers []domain.Answer `json:"answers" jsonschema_description:"Answers in question order"`
}

// Service is the questionnaire host driven by MCP tools.
type Service interface {
	Questions(ctx context.Context, qid string) ([]domain.Question, error)
	AddQuestion(ctx context.Context, qid string, d domain.Draft) (domain.Question, error)
	EditQuestion(ctx context.Context, qid, id string, p domain.Patch) error
	DeleteQuestion(ctx context.Context, qid, id string) error
	ReorderQuestions(ctx context.Context, qid string, from, to int) error

	StartSession(ctx context.Context, qid string) (domain.FlowRecord, error)
	Session(ctx context.Context, sid string) (domain.FlowRecord, error)
	Answer(ctx context.Context, sid, value string) (domain.FlowRecord, error)
	Skip(ctx context.Context, sid string) (domain.FlowRecord, error)
	Answers(ctx context.Context, sid string) ([]domain.Answer, error)
}

// Server exposes a questionnaire Service as an MCP Server.
type Server struct {
	service              Service
	defaultQuestionnaire string
	maxInputSize         int
	mcpServer            *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithMaxInputSize sets the answer size limit. Zero keeps domain.DefaultMaxAnswerSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
// Tools without a questionnaire_id argument act on defaultQuestionnaire.
func NewServer(svc Service, defaultQuestionnaire string, opts ...Option) *Server {
	if defaultQuestionnaire == "" {
		defaultQuestionnaire = questionnaire.DefaultQuestionnaire
	}
	s := &Server{
		service:              svc,
		defaultQuestionnaire: defaultQuestionnaire,
		mcpServer:            server.NewMCPServer("questionnaire-mcp", questionnaire.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func questionnaireArg() mcp.ToolOption {
	return mcp.WithString("questionnaire_id", mcp.Description("Questionnaire ID (optional, defaults to the server's questionnaire)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_questions",
		mcp.WithDescription("List the questions of a questionnaire in order."),
		questionnaireArg(),
		mcp.WithOutputSchema[QuestionList](),
	), mcp.NewStructuredToolHandler(s.handleListQuestions))

	s.mcpServer.AddTool(mcp.NewTool("add_question",
		mcp.WithDescription("Append a question. Duplicate texts (case-insensitive) are rejected."),
		questionnaireArg(),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question text")),
		mcp.WithString("type", mcp.Description("text or multiple-choice (default text)")),
		mcp.WithString("options", mcp.Description("Comma separated options for multiple-choice, e.g. red,green")),
		mcp.WithOutputSchema[domain.Question](),
	), mcp.NewStructuredToolHandler(s.handleAddQuestion))

	s.mcpServer.AddTool(mcp.NewTool("edit_question",
		mcp.WithDescription("Change fields of a question. Omitted fields are kept."),
		questionnaireArg(),
		mcp.WithString("id", mcp.Required(), mcp.Description("Question ID")),
		mcp.WithString("question", mcp.Description("New text")),
		mcp.WithString("type", mcp.Description("New type")),
		mcp.WithString("options", mcp.Description("New comma separated options")),
		mcp.WithOutputSchema[QuestionList](),
	), mcp.NewStructuredToolHandler(s.handleEditQuestion))

	s.mcpServer.AddTool(mcp.NewTool("delete_question",
		mcp.WithDescription("Delete a question by ID."),
		questionnaireArg(),
		mcp.WithString("id", mcp.Required(), mcp.Description("Question ID")),
		mcp.WithOutputSchema[QuestionList](),
	), mcp.NewStructuredToolHandler(s.handleDeleteQuestion))

	s.mcpServer.AddTool(mcp.NewTool("reorder_questions",
		mcp.WithDescription("Move the question at position from to position to (zero based)."),
		questionnaireArg(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Current index")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Target index")),
		mcp.WithOutputSchema[QuestionList](),
	), mcp.NewStructuredToolHandler(s.handleReorder))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a respondent session at the first question."),
		questionnaireArg(),
		mcp.WithOutputSchema[domain.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the state and current question of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Answer the current question and move to the next one."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Answer; for multiple-choice, one of the options")),
		mcp.WithOutputSchema[domain.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("skip",
		mcp.WithDescription("Skip the current question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.SessionView](),
	), mcp.NewStructuredToolHandler(s.handleSkip))

	s.mcpServer.AddTool(mcp.NewTool("get_answers",
		mcp.WithDescription("List the answers recorded for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[AnswerList](),
	), mcp.NewStructuredToolHandler(s.handleGetAnswers))
}

func (s *Server) qid(args map[string]interface{}) string {
	if qid, ok := args["questionnaire_id"].(string); ok && qid != "" {
		return qid
	}
	return s.defaultQuestionnaire
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func intArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		// JSON numbers arrive as float64. Fractions and values past int range are rejected.
		if v != math.Trunc(v) || v < math.MinInt || v >= math.MaxInt {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s is required", key)
	}
}

// toolError keeps the human message of domain errors.
func toolError(op string, err error) error {
	return fmt.Errorf("%s: %s", op, domain.Message(err))
}

func (s *Server) list(ctx context.Context, qid string) (QuestionList, error) {
	questions, err := s.service.Questions(ctx, qid)
	if err != nil {
		return QuestionList{}, toolError("list questions", err)
	}
	return QuestionList{Questions: questions}, nil
}

func (s *Server) handleListQuestions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QuestionList, error) {
	return s.list(ctx, s.qid(args))
}

func (s *Server) handleAddQuestion(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Question, error) {
	q, err := dto.DecodeQuestion(args)
	if err != nil {
		return domain.Question{}, err
	}
	draft, err := q.Draft()
	if err != nil {
		return domain.Question{}, toolError("add question", err)
	}
	added, err := s.service.AddQuestion(ctx, s.qid(args), draft)
	if err != nil {
		return domain.Question{}, toolError("add question", err)
	}
	return added, nil
}

func (s *Server) handleEditQuestion(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QuestionList, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return QuestionList{}, err
	}

	fields := make(map[string]any, len(args))
	for k, v := range args {
		if k == "id" || k == "questionnaire_id" {
			continue
		}
		fields[k] = v
	}
	patch, err := dto.DecodePatch(fields)
	if err != nil {
		return QuestionList{}, toolError("edit question", err)
	}
	if err := s.service.EditQuestion(ctx, s.qid(args), id, patch); err != nil {
		return QuestionList{}, toolError("edit question", err)
	}
	return s.list(ctx, s.qid(args))
}

func (s *Server) handleDeleteQuestion(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QuestionList, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return QuestionList{}, err
	}
	if err := s.service.DeleteQuestion(ctx, s.qid(args), id); err != nil {
		return QuestionList{}, toolError("delete question", err)
	}
	return s.list(ctx, s.qid(args))
}

func (s *Server) handleReorder(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (QuestionList, error) {
	from, err := intArg(args, "from")
	if err != nil {
		return QuestionList{}, err
	}
	to, err := intArg(args, "to")
	if err != nil {
		return QuestionList{}, err
	}
	if err := s.service.ReorderQuestions(ctx, s.qid(args), from, to); err != nil {
		return QuestionList{}, toolError("reorder questions", err)
	}
	return s.list(ctx, s.qid(args))
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SessionView, error) {
	rec, err := s.service.StartSession(ctx, s.qid(args))
	if err != nil {
		return domain.SessionView{}, toolError("start session", err)
	}
	return rec.View(), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SessionView, error) {
	sid, err := stringArg(args, "session_id")
	if err != nil {
		return domain.SessionView{}, err
	}
	rec, err := s.service.Session(ctx, sid)
	if err != nil {
		return domain.SessionView{}, toolError("get session", err)
	}
	return rec.View(), nil
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SessionView, error) {
	sid, err := stringArg(args, "session_id")
	if err != nil {
		return domain.SessionView{}, err
	}
	value, _ := args["value"].(string)

	clean, err := domain.CleanAnswer(value, s.maxInputSize)
	if err != nil {
		slog.Warn("MCP Answer: Input rejected", "err", err, "size", len(value))
		return domain.SessionView{}, fmt.Errorf("input rejected: %w", err)
	}

	rec, err := s.service.Answer(ctx, sid, clean)
	if err != nil {
		return domain.SessionView{}, toolError("answer", err)
	}
	return rec.View(), nil
}

func (s *Server) handleSkip(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SessionView, error) {
	sid, err := stringArg(args, "session_id")
	if err != nil {
		return domain.SessionView{}, err
	}
	rec, err := s.service.Skip(ctx, sid)
	if err != nil {
		return domain.SessionView{}, toolError("skip", err)
	}
	return rec.View(), nil
}

func (s *Server) handleGetAnswers(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AnswerList, error) {
	sid, err := stringArg(args, "session_id")
	if err != nil {
		return AnswerList{}, err
	}
	answers, err := s.service.Answers(ctx, sid)
	if err != nil {
		return AnswerList{}, toolError("get answers", err)
	}
	return AnswerList{Answers: answers}, nil
}

func (s *Server) registerResources() {
	uri := "questionnaire://" + s.defaultQuestionnaire + "/questions"
	s.mcpServer.AddResource(mcp.NewResource(uri, "Questions of the default questionnaire",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.list(ctx, s.defaultQuestionnaire)
		if err != nil {
			return nil, err
		}
		jsonBytes, _ := json.Marshal(list)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
