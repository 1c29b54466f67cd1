// Package server exposes the chat resolution pipeline and the audit trail
// over HTTP and WebSocket. Authentication happens upstream; the proxy in
// front of this service injects the actor identity headers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/opshr/hrdesk/pkg/agent"
	"github.com/opshr/hrdesk/pkg/audit"
	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/session"
	"github.com/opshr/hrdesk/pkg/tools"
)

// Actor identity headers, set by the authenticating proxy.
const (
	headerActorID      = "X-Actor-ID"
	headerActorName    = "X-Actor-Name"
	headerActorRole    = "X-Actor-Role"
	headerActorEmpCode = "X-Actor-EmpCode"
)

// Server serves the REST API and the chat WebSocket.
type Server struct {
	agent    *agent.Agent
	audit    *audit.Recorder
	registry *tools.Registry
	sessions *session.Manager
	srv      *http.Server
}

// New creates a new Server.
func New(a *agent.Agent, recorder *audit.Recorder, registry *tools.Registry, sessions *session.Manager) *Server {
	return &Server{
		agent:    a,
		audit:    recorder,
		registry: registry,
		sessions: sessions,
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting server", "addr", addr)
	return s.srv.ListenAndServe()
}

// Handler returns the full route table, CORS included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/session/clear", s.handleClearSession)
	mux.HandleFunc("GET /api/audit", s.handleListAudit)
	mux.HandleFunc("GET /api/tools", s.handleListTools)

	// WebSocket
	mux.HandleFunc("/api/chat/ws", s.handleChatWebSocket)

	return s.corsMiddleware(mux)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// actorFromRequest reads the identity headers the authenticating proxy
// injects. Requests without a valid identity are rejected.
func actorFromRequest(r *http.Request) (domain.Actor, error) {
	id := r.Header.Get(headerActorID)
	if id == "" {
		return domain.Actor{}, fmt.Errorf("missing %s header", headerActorID)
	}
	role, err := domain.ParseRole(r.Header.Get(headerActorRole))
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{
		ID:      id,
		Name:    r.Header.Get(headerActorName),
		Role:    role,
		EmpCode: r.Header.Get(headerActorEmpCode),
	}, nil
}

// sessionID ties conversation history to the authenticated identity, never
// to anything client-supplied.
func sessionID(actor domain.Actor) string {
	return "user:" + actor.ID
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Actor-ID, X-Actor-Name, X-Actor-Role, X-Actor-EmpCode")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	slog.Error("API Error", "error", err)
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
