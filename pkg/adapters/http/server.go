package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/internal/presentation/graph"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Asker runs one user turn to completion.
type Asker interface {
	Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error)
}

// SessionReader returns snapshots of live, retained or archived sessions.
type SessionReader interface {
	Session(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Config wires the server to the rest of the system. Asker is required.
type Config struct {
	Asker     Asker
	Sessions  SessionReader
	Catalogue *domain.Catalogue
	Metrics   http.Handler // Served on /metrics when set
	Streams   *StreamManager
	// WeChatToken enables the /wechat webhook.
	WeChatToken string
	Version     string
	Logger      *slog.Logger
}

// Server holds the route handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Streams == nil {
		cfg.Streams = NewStreamManager(logger)
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Post("/chat", s.Chat)
	r.Get("/sessions/{id}", s.GetSession)
	r.Get("/sessions/{id}/graph", s.GetSessionGraph)
	r.Get("/catalogue", s.GetCatalogue)
	r.Get("/events", s.SubscribeEvents)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.WeChatToken != "" {
		r.Get("/wechat", s.VerifyWeChat)
		r.Post("/wechat", s.WeChat)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// maxChatBody bounds the JSON body of /chat; the message itself is checked again by the front door.
const maxChatBody = 64 << 10

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			s.logger.Warn("Chat: request body too large", "limit", tooLarge.Limit)
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("Chat: invalid request body", "err", err)
		return
	}

	reply, err := s.cfg.Asker.Ask(r.Context(), frontdoor.Request{
		UserID:  body.UserID,
		Text:    body.Message,
		Channel: frontdoor.ChannelHTTP,
	})
	switch {
	case errors.Is(err, frontdoor.ErrMissingUserID):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, frontdoor.ErrInputTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, frontdoor.ErrInvalidUTF8):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("Chat failed", "user_id", body.UserID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.writeJSON(w, http.StatusOK, sess)
	}
}

// GetSessionGraph handles GET /sessions/{id}/graph with a Mermaid flowchart of the session.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.SessionMermaid(sess))
}

// lookup writes the error response itself when it returns false.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	if s.cfg.Sessions == nil {
		s.writeError(w, http.StatusNotImplemented, "session lookup is not configured")
		return nil, false
	}
	id := chi.URLParam(r, "id")
	sess, err := s.cfg.Sessions.Session(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
		return nil, false
	}
	if err != nil {
		s.logger.Error("session lookup failed", "session_id", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "session lookup failed")
		return nil, false
	}
	return sess, true
}

// GetCatalogue handles GET /catalogue.
func (s *Server) GetCatalogue(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Catalogue.Entries())
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	version := strings.TrimSpace(s.cfg.Version)
	if version == "" {
		version = "dev"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "campusmate-http",
		"version": version,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
