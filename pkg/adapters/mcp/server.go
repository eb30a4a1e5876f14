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

	"github.com/aretw0/campusmate/internal/logging"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/frontdoor"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogueURI is the resource exposing the capability catalogue.
const CatalogueURI = "campusmate://catalogue"

// Asker runs one user turn to completion.
type Asker interface {
	Ask(ctx context.Context, req frontdoor.Request) (frontdoor.Reply, error)
}

// AskArgs are the arguments of the ask tool.
type AskArgs struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Server exposes the assistant as an MCP server.
type Server struct {
	asker     Asker
	catalogue *domain.Catalogue
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(asker Asker, catalogue *domain.Catalogue, version string, opts ...Option) *Server {
	s := &Server{
		asker:     asker,
		catalogue: catalogue,
		mcpServer: server.NewMCPServer("campusmate-mcp", strings.TrimSpace(version)),
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

// ServeSSE serves SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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

		s.logger.Info("shutdown signal received, stopping MCP server")
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Ask the campus assistant a question and wait for the final answer."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable identifier of the asking user; scopes personal notes and history")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's utterance")),
		mcp.WithOutputSchema[frontdoor.Reply](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	s.mcpServer.AddTool(mcp.NewTool("list_capabilities",
		mcp.WithDescription("List the workers and operations the assistant can plan with."),
	), s.handleListCapabilities)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args AskArgs) (frontdoor.Reply, error) {
	reply, err := s.asker.Ask(ctx, frontdoor.Request{
		UserID:  args.UserID,
		Text:    args.Message,
		Channel: frontdoor.ChannelMCP,
	})
	if err != nil {
		s.logger.Warn("MCP ask failed", "user_id", args.UserID, "err", err)
		return frontdoor.Reply{}, fmt.Errorf("ask failed: %w", err)
	}
	return reply, nil
}

func (s *Server) handleListCapabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(s.catalogue.Entries())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode catalogue: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogueURI, "Capability catalogue",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogueURI,
				MIMEType: "application/json",
				Text:     s.catalogue.Describe(),
			},
		}, nil
	})
}
