// Package api exposes the assistant over HTTP: a JSON chat endpoint,
// a WebSocket channel and the usual health/version plumbing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/beautypizza/bella/internal/buildinfo"
	"github.com/beautypizza/bella/internal/conversation"
)

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP front end for the conversation manager.
type Server struct {
	address        string
	port           int
	manager        *conversation.Manager
	allowedOrigins []string
	logger         *slog.Logger
	server         *http.Server
}

func NewServer(address string, port int, manager *conversation.Manager, allowedOrigins []string, logger *slog.Logger) *Server {
	return &Server{
		address:        address,
		port:           port,
		manager:        manager,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Start begins serving HTTP requests and blocks until the listener
// fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /api/sessions/{id}/state", s.handleState)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // model calls can be slow
	}

	s.logger.Info("starting API server", "address", s.address, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// ChatRequest is one user message bound to a session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant's reply plus enough session state
// for a front end to render progress.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Stage     string `json:"stage"`
	OrderID   int    `json:"order_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	conv := s.manager.Get(req.SessionID)
	reply, err := conv.Turn(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("turn failed", "session", conv.ID(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	state := conv.State()
	writeJSON(w, ChatResponse{
		SessionID: conv.ID(),
		Response:  reply,
		Stage:     state.Stage.String(),
		OrderID:   state.OrderID,
	}, s.logger)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.manager.Reset(id)
	writeJSON(w, map[string]string{"status": "reset", "session_id": id}, s.logger)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.manager.Lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	state := conv.State()
	writeJSON(w, map[string]any{
		"session_id":    conv.ID(),
		"stage":         state.Stage.String(),
		"order_id":      state.OrderID,
		"client_name":   state.ClientName,
		"pending_items": state.PendingItems,
	}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, buildinfo.Info(), s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Len(),
		"uptime":   buildinfo.Uptime().String(),
	}, s.logger)
}
