// Package httpapi exposes command evaluation over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/girs-server/girsd/internal/audit"
	"github.com/girs-server/girsd/internal/auth"
	"github.com/girs-server/girsd/internal/engine"
)

// SessionFactory builds the engine serving HTTP requests.
type SessionFactory func(sessionID string) (*engine.Engine, error)

// EvalRequest is the body of POST /api/v1/eval.
type EvalRequest struct {
	Line string `json:"line"`
}

// Health is the data of GET /api/v1/health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Server evaluates lines posted over HTTP against one dedicated engine.
// The engine is rebuilt when a request makes it quit.
type Server struct {
	newSession SessionFactory
	evalLock   sync.Locker
	auth       *auth.Middleware
	events     http.Handler
	startTime  time.Time

	mu         sync.Mutex
	eng        *engine.Engine
	generation int

	httpServer *http.Server
}

// NewServer creates a server and its first engine. verifier may be nil to
// serve without tokens; events, when set, is mounted at /api/v1/events.
func NewServer(newSession SessionFactory, evalLock sync.Locker, verifier *auth.Verifier, events http.Handler) (*Server, error) {
	s := &Server{
		newSession: newSession,
		evalLock:   evalLock,
		events:     events,
		startTime:  time.Now(),
	}
	if verifier != nil {
		s.auth = auth.NewMiddleware(verifier)
	}
	if _, err := s.engine(); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the API handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.auth != nil {
		r.Use(s.auth.RequireAuth)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/modules", s.handleModules)
		r.Post("/eval", s.handleEval)
		if s.events != nil {
			r.Method(http.MethodGet, "/events", s.events)
		}
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})
	return r
}

// ListenAndServe serves the API on port until Shutdown.
func (s *Server) ListenAndServe(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	return s.Serve(listener)
}

// Serve serves the API on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	log.Printf("HTTP API listening on %s", listener.Addr())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// current returns the engine without checking its state.
func (s *Server) current() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

// engine returns a running engine, building a new one after quit. Callers
// other than NewServer hold evalLock.
func (s *Server) engine() (*engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eng != nil && s.eng.State() == engine.Running {
		return s.eng, nil
	}
	s.generation++
	eng, err := s.newSession(fmt.Sprintf("http-%d", s.generation))
	if err != nil {
		return nil, err
	}
	s.eng = eng
	return eng, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	eng := s.current()
	WriteSuccess(w, Health{
		Status:  "ok",
		Version: eng.Version(),
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	eng := s.current()
	WriteSuccess(w, eng.ModuleNames())
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeBadRequest, "Invalid JSON body")
		return
	}
	if strings.ContainsAny(req.Line, "\r\n") {
		WriteError(w, http.StatusBadRequest, CodeBadRequest, "Line must not contain line breaks")
		return
	}

	s.evalLock.Lock()
	eng, err := s.engine()
	if err != nil {
		s.evalLock.Unlock()
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error())
		return
	}
	result, err := eng.Exec(r.Context(), req.Line)
	s.evalLock.Unlock()

	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, audit.Code(err), strings.TrimPrefix(result, engine.ErrorPrefix))
		return
	}
	WriteSuccess(w, result)
}
