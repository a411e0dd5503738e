// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// Package server exposes the action gateway over HTTP: one POST endpoint
// that decodes {action, params}, dispatches through the action registry,
// and writes the result envelope with the matching status code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"

	"github.com/garridom/m365-gateway/internal/actions"
	"github.com/garridom/m365-gateway/internal/config"
	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/logging"
	"github.com/garridom/m365-gateway/internal/msapi"
	"github.com/garridom/m365-gateway/internal/msauth"
)

// invokeRequest is the body of POST /api/invoke.
type invokeRequest struct {
	Action string         `json:"action"`
	Params actions.Params `json:"params"`
}

// transportError is the body of protocol-level failures (bad JSON, unknown
// action), distinct from the action result envelope.
type transportError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server dispatches invoke requests to registered action handlers.
type Server struct {
	registry *actions.Registry
	clients  *actions.Clients
	cfg      *config.Config
}

// New creates a server over a registry and the process-wide clients.
func New(registry *actions.Registry, clients *actions.Clients, cfg *config.Config) *Server {
	return &Server{registry: registry, clients: clients, cfg: cfg}
}

// Router builds the chi router with request logging, panic recovery, the
// invoke endpoint, and a health probe.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	httpLogger := httplog.NewLogger("m365-gateway", httplog.Options{
		LogLevel: logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Concise:  true,
	})
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, transportError{
			Error:   "MethodNotAllowed",
			Message: "only POST is accepted on this endpoint",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/invoke", s.handleInvoke)

	return r
}

func (s *Server) handleInvoke(w http.ResponseWriter, req *http.Request) {
	var body invokeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, transportError{
			Error:   "InvalidJSON",
			Message: "request body is not valid JSON",
		})
		return
	}
	if body.Action == "" {
		writeJSON(w, http.StatusBadRequest, transportError{
			Error:   "MissingAction",
			Message: "request body must carry a non-empty action",
		})
		return
	}

	handler, ok := s.registry.Lookup(body.Action)
	if !ok {
		writeJSON(w, http.StatusBadRequest, transportError{
			Error:   "UnknownAction",
			Message: "no action named " + body.Action,
		})
		return
	}

	if body.Params == nil {
		body.Params = actions.Params{}
	}

	inv := &actions.Invocation{
		ID:      uuid.NewString(),
		Action:  body.Action,
		Params:  body.Params,
		Clients: s.clients,
		Config:  s.cfg,
	}
	inv.Logger = logging.ServerLogger.With("invocation_id", inv.ID, "action", body.Action)

	ctx := req.Context()
	timeout := s.cfg.RequestTimeout
	if secs := body.Params.IntOr("timeout_seconds", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	env := s.run(ctx, inv, handler)
	writeJSON(w, env.ResponseCode(), env)
}

// run executes one handler and maps its result or error into an envelope.
// A panic inside a handler becomes a 500 envelope rather than a dropped
// connection.
func (s *Server) run(ctx context.Context, inv *actions.Invocation, handler actions.Handler) (env *envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			inv.Logger.Error("Action handler panicked", "panic", r)
			env = envelope.Error(http.StatusInternalServerError, "InternalError", nil)
		}
	}()

	result, err := handler(ctx, inv)
	if err != nil {
		return s.mapError(inv, err)
	}
	return result
}

// mapError converts a handler error into the appropriate error envelope.
func (s *Server) mapError(inv *actions.Invocation, err error) *envelope.Envelope {
	switch {
	case errors.Is(err, msapi.ErrNotImplemented):
		inv.Logger.Warn("Action not implemented")
		return envelope.NotImplemented(inv.Action)

	case errors.Is(err, actions.ErrMissingParam):
		inv.Logger.Warn("Invalid action parameters", "error", err)
		return envelope.Error(http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, msauth.ErrTokenAcquisition):
		// Credential detail stays in the logs, not the response.
		inv.Logger.Error("Token acquisition failed", "error", err)
		return envelope.Error(http.StatusInternalServerError, "authentication against Microsoft identity failed", nil)
	}

	if apiErr, ok := msapi.AsAPIError(err); ok {
		inv.Logger.Warn("Downstream API error",
			"status", apiErr.StatusCode, "code", apiErr.Code)
		return envelope.Error(apiErr.StatusCode, apiErr.Message, apiErr.Details())
	}

	inv.Logger.Error("Action failed", "error", err)
	return envelope.Error(http.StatusInternalServerError, err.Error(), nil)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.ServerLogger.Error("Failed to encode response", "error", err)
	}
}
