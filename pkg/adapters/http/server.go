package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arcty"
	"github.com/aretw0/arcty/internal/logging"
	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/ports"
	"github.com/aretw0/arcty/pkg/runner"
	"github.com/aretw0/arcty/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Assistant is what the server needs from the core.
type Assistant interface {
	ports.Conversation
	ports.Introspector
}

// Watcher is implemented by assistants that reload their script.
// When present, GET /events without a session streams reloads.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Server exposes an assistant over HTTP.
type Server struct {
	Assistant Assistant
	Sessions  *session.Manager
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

type messageRequest struct {
	Input *string `json:"input"`
}

type evaluateResponse struct {
	Answer  string `json:"answer"`
	Matched bool   `json:"matched"`
}

type verifyResponse struct {
	Complete   bool       `json:"complete"`
	Incomplete [][]string `json:"incomplete"`
}

// NewHandler creates a new HTTP handler for the assistant.
func NewHandler(a Assistant, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Assistant: a,
		Sessions:  sessions,
		Streams:   NewStreamManager(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/paths", s.GetPaths)
	r.Get("/verify", s.GetVerify)
	r.Post("/evaluate", s.Evaluate)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/welcome", s.Welcome)
			r.Post("/messages", s.PostMessage)
		})
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Welcome handles POST /sessions/{id}/welcome.
func (s *Server) Welcome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	turn, err := runner.Welcome(r.Context(), s.Sessions, s.Assistant, id)
	if err != nil {
		s.fail(w, "Welcome", err)
		return
	}
	s.publish(id, turn)
	s.writeJSON(w, http.StatusOK, turn)
}

// PostMessage handles POST /sessions/{id}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	turn, err := runner.Reply(r.Context(), s.Sessions, s.Assistant, id, input)
	if err != nil {
		s.fail(w, "Reply", err)
		return
	}
	s.publish(id, turn)
	s.writeJSON(w, http.StatusOK, turn)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetPaths handles GET /paths. The tree is rendered as nested JSON.
func (s *Server) GetPaths(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Assistant.Tree().Root())
}

// GetVerify handles GET /verify.
func (s *Server) GetVerify(w http.ResponseWriter, r *http.Request) {
	tree := s.Assistant.Tree()
	incomplete := tree.Incomplete()
	if incomplete == nil {
		incomplete = [][]string{}
	}
	s.writeJSON(w, http.StatusOK, verifyResponse{Complete: tree.Verify(), Incomplete: incomplete})
}

// Evaluate handles POST /evaluate. It matches without touching any session.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	answer, matched := s.Assistant.Tree().Evaluate(input)
	s.writeJSON(w, http.StatusOK, evaluateResponse{Answer: answer, Matched: matched})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arcty-http",
		"version": strings.TrimSpace(arcty.Version),
	})
}

// decodeInput reads {"input": "..."} and sanitizes it. It writes the error
// response itself and reports whether the handler should go on.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return "", false
	}
	if body.Input == nil {
		http.Error(w, "Missing input", http.StatusBadRequest)
		return "", false
	}

	clean, err := runner.SanitizeInput(*body.Input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		s.logger.Warn("Input rejected", "err", err, "size", len(*body.Input))
		return "", false
	}
	return clean, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidSessionID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) publish(sessionID string, turn *runner.Turn) {
	data, err := json.Marshal(turn.Reply)
	if err != nil {
		s.logger.Error("event encode failed", "session_id", sessionID, "err", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(data))
}
