package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/aretw0/arcty/pkg/runner"
	"github.com/aretw0/arcty/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PathsURI is the resource holding the decision tree.
const PathsURI = "arcty://paths"

// TurnResponse is the structured result of the welcome and reply tools.
type TurnResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The session the turn belongs to"`
	Messages  []domain.Message `json:"messages" jsonschema_description:"Messages appended to the transcript by this turn"`
	Plan      domain.Plan      `json:"plan,omitempty" jsonschema_description:"UI steps attached to the answer"`
	Matched   bool             `json:"matched" jsonschema_description:"Whether the input reached a complete answer"`
	Keys      []string         `json:"keys,omitempty" jsonschema_description:"Patterns matched on the way down the tree"`
}

// EvaluateResponse is the structured result of the evaluate tool.
type EvaluateResponse struct {
	Answer  string `json:"answer"`
	Matched bool   `json:"matched"`
}

// VerifyResponse is the structured result of the verify_script tool.
type VerifyResponse struct {
	Complete   bool       `json:"complete" jsonschema_description:"True when every answer is written"`
	Incomplete [][]string `json:"incomplete" jsonschema_description:"Key paths of the answers not written yet"`
}

// Assistant is what the MCP server needs from the core.
type Assistant interface {
	ports.Conversation
	ports.Introspector
}

// Server wraps an assistant and exposes it as an MCP Server.
type Server struct {
	assistant Assistant
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(a Assistant, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		assistant: a,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("arcty-mcp", strings.TrimSpace(arcty.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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

func (s *Server) registerTools() {
	// TOOL: welcome
	welcomeTool := mcp.NewTool("welcome",
		mcp.WithDescription("Greet a visitor. First-time visitors get the welcome message, returning ones a greeting for the time of day."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The visitor's session ID")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(welcomeTool, mcp.NewStructuredToolHandler(s.handleWelcome))

	// TOOL: reply
	replyTool := mcp.NewTool("reply",
		mcp.WithDescription("Answer a visitor's message and append both to the session transcript."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The visitor's session ID")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The message typed by the visitor")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(replyTool, mcp.NewStructuredToolHandler(s.handleReply))

	// TOOL: evaluate
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Match an input against the script without touching any session."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The text to match")),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: verify_script
	verifyTool := mcp.NewTool("verify_script",
		mcp.WithDescription("Check that every answer in the script is written."),
		mcp.WithOutputSchema[VerifyResponse](),
	)
	s.mcpServer.AddTool(verifyTool, mcp.NewStructuredToolHandler(s.handleVerify))

	// TOOL: get_paths
	s.mcpServer.AddTool(mcp.NewTool("get_paths",
		mcp.WithDescription("Get the decision tree as nested JSON."),
	), s.handleGetPaths)
}

func (s *Server) handleWelcome(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return TurnResponse{}, errors.New("session_id is required")
	}

	turn, err := runner.Welcome(ctx, s.sessions, s.assistant, sessionID)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("welcome failed: %w", err)
	}
	return toResponse(sessionID, turn), nil
}

func (s *Server) handleReply(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return TurnResponse{}, errors.New("session_id is required")
	}
	input, ok := args["input"].(string)
	if !ok {
		return TurnResponse{}, errors.New("input is required")
	}

	clean, err := runner.SanitizeInput(input)
	if err != nil {
		s.logger.Warn("MCP Reply: input rejected", "err", err, "size", len(input))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	turn, err := runner.Reply(ctx, s.sessions, s.assistant, sessionID, clean)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("reply failed: %w", err)
	}
	return toResponse(sessionID, turn), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	input, ok := args["input"].(string)
	if !ok {
		return EvaluateResponse{}, errors.New("input is required")
	}
	answer, matched := s.assistant.Tree().Evaluate(input)
	return EvaluateResponse{Answer: answer, Matched: matched}, nil
}

func (s *Server) handleVerify(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (VerifyResponse, error) {
	tree := s.assistant.Tree()
	incomplete := tree.Incomplete()
	if incomplete == nil {
		incomplete = [][]string{}
	}
	return VerifyResponse{Complete: tree.Verify(), Incomplete: incomplete}, nil
}

func (s *Server) handleGetPaths(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.assistant.Tree().Root())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toResponse(sessionID string, turn *runner.Turn) TurnResponse {
	return TurnResponse{
		SessionID: sessionID,
		Messages:  turn.Reply.Messages,
		Plan:      turn.Reply.Plan,
		Matched:   turn.Reply.Matched,
		Keys:      turn.Reply.Keys,
	}
}

func (s *Server) registerResources() {
	// EXPOSE: arcty://paths
	s.mcpServer.AddResource(mcp.NewResource(PathsURI, "Decision Tree",
		mcp.WithResourceDescription("The script's paths as nested JSON"),
		mcp.WithMIMEType("application/json"),
	), s.readPaths)
}

func (s *Server) readPaths(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.assistant.Tree().Root())
	if err != nil {
		return nil, fmt.Errorf("failed to encode paths: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PathsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
