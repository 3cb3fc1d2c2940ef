// Package server hosts the diagram, query and live-schema panels over HTTP
// and a websocket message channel.
package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"dbizzy/internal/db"
	"dbizzy/internal/graph"
	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
	"dbizzy/pkg/config"
)

const (
	DefaultPort    = 8080
	DefaultTimeout = 10

	// largest request body accepted by the diagram and query endpoints
	maxBody = 32 << 20
)

type Server struct {
	cfg      config.AppConfig
	opts     graph.Options
	timeout  int
	webDir   string
	preview  *preview.Preview
	sessions *sessions
	mux      *http.ServeMux

	activeMu     sync.RWMutex
	activeDriver string
	activeDSN    string
}

// New returns a Server for cfg. The preview is shared with whoever else
// feeds it text, such as a file watcher; nil gives the server its own.
// A timeout of zero means DefaultTimeout seconds.
func New(cfg config.AppConfig, p *preview.Preview, timeoutSec int) *Server {
	opts := cfg.Diagram.Options.WithDefaults()
	if p == nil {
		p = preview.New(opts)
	}
	s := &Server{
		cfg:      cfg,
		opts:     opts,
		timeout:  cmp.Or(timeoutSec, DefaultTimeout),
		webDir:   cmp.Or(cfg.Server.WebDir, "web"),
		preview:  p,
		sessions: newSessions(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/", http.FileServer(http.Dir(s.webDir)))

	s.mux.HandleFunc("/api/getConnect", s.handleGetConnect)
	s.mux.HandleFunc("/api/connect", s.handleConnect)
	s.mux.HandleFunc("/api/schema", s.handleSchema)
	s.mux.HandleFunc("/api/diagram", s.handleDiagram)

	s.mux.HandleFunc("/api/query/open", s.handleQueryOpen)
	s.mux.HandleFunc("/api/query/exec", s.handleQueryExec)
	s.mux.HandleFunc("/api/query/close", s.handleQueryClose)
	s.mux.HandleFunc("/api/query/export", s.handleQueryExport)

	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// SetActive sets the active database connection
func (s *Server) SetActive(driver, dsn string) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	s.activeDriver = driver
	s.activeDSN = dsn
}

// active returns the active database connection
func (s *Server) active() (string, string) {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	return s.activeDriver, s.activeDSN
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down and
// closes every open query session.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	port = cmp.Or(port, s.cfg.Server.Port, DefaultPort)
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown) //nolint:errcheck
	}()
	defer s.sessions.closeAll()

	logger.Info("listening on %s, serving %s", addr, s.webDir)
	logger.Info("registered dialects: %v", db.RegisteredDialects())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response: %v", err)
	}
}
