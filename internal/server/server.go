// Package server exposes the tracker API over HTTP with JSON bodies.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/validation"
)

// Options configures the listener
type Options struct {
	Host     string
	Port     int
	Location *time.Location
}

// Server serves the daemon's HTTP interface
type Server struct {
	api        api.API
	query      *validation.QueryValidator
	httpServer *http.Server
}

// New builds the route table over a
func New(a api.API, opts Options) *Server {
	s := &Server{
		api:   a,
		query: validation.NewQueryValidator(opts.Location),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /tracker/status", s.handleStatus)
	mux.HandleFunc("POST /tracker/start", s.handleStart)
	mux.HandleFunc("POST /tracker/stop", s.handleStop)

	mux.HandleFunc("GET /stats/summary", s.handleSummary)
	mux.HandleFunc("GET /stats/daily", s.handleDaily)
	mux.HandleFunc("GET /stats/weekly", s.handleWeekly)
	mux.HandleFunc("GET /stats/monthly", s.handleMonthly)
	mux.HandleFunc("GET /stats/year", s.handleYear)
	mux.HandleFunc("GET /stats/applications", s.handleApplications)
	mux.HandleFunc("GET /timeline", s.handleTimeline)
	mux.HandleFunc("GET /sessions", s.handleSessions)

	mux.HandleFunc("GET /folders", s.handleListFolders)
	mux.HandleFunc("POST /folders", s.handleCreateFolder)
	mux.HandleFunc("PATCH /folders/{id}", s.handleRenameFolder)
	mux.HandleFunc("DELETE /folders/{id}", s.handleDeleteFolder)

	mux.HandleFunc("GET /tasks", s.handleListTasks)
	mux.HandleFunc("POST /tasks", s.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /tasks/{id}/move", s.handleMoveTask)
	mux.HandleFunc("GET /tasks/{id}/stats", s.handleTaskStats)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Handler:           withRequestLogging(withRecovery(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks until the server is shut down. A clean shutdown
// returns nil.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	logging.Logger.Info("http server listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
