package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"dbizzy/internal/logger"
	"dbizzy/internal/sqlrunner"
)

// sessions holds the open query databases, one per panel.
type sessions struct {
	mu  sync.Mutex
	dbs map[uuid.UUID]*sqlrunner.DB
}

func newSessions() *sessions {
	return &sessions{dbs: map[uuid.UUID]*sqlrunner.DB{}}
}

func (ss *sessions) add(d *sqlrunner.DB) uuid.UUID {
	id := uuid.New()
	ss.mu.Lock()
	ss.dbs[id] = d
	ss.mu.Unlock()
	return id
}

func (ss *sessions) get(raw string) (*sqlrunner.DB, uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("invalid session id: %w", err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	d, ok := ss.dbs[id]
	if !ok {
		return nil, id, fmt.Errorf("no query session %s", id)
	}
	return d, id, nil
}

// remove takes the session out of the set. ok is false when another caller
// already removed it.
func (ss *sessions) remove(raw string) (d *sqlrunner.DB, id uuid.UUID, ok bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, false
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	d, ok = ss.dbs[id]
	delete(ss.dbs, id)
	return d, id, ok
}

func (ss *sessions) closeAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for id, d := range ss.dbs {
		if err := d.Close(); err != nil {
			logger.Error("close query session %s: %v", id, err)
		}
		delete(ss.dbs, id)
	}
}

type queryRequest struct {
	ID  string `json:"id"`
	SQL string `json:"sql"`
}

type queryResponse struct {
	OK      bool                  `json:"ok"`
	ID      string                `json:"id"`
	Tables  []string              `json:"tables,omitempty"`
	Results []sqlrunner.ResultSet `json:"results,omitempty"`
}

// handleQueryOpen starts a query session. An empty body opens an empty
// in-memory database; otherwise the body is read as a SQLite file.
func (s *Server) handleQueryOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var d *sqlrunner.DB
	var err error
	if r.ContentLength == 0 {
		d, err = sqlrunner.OpenMemory()
	} else {
		d, err = sqlrunner.OpenReader(http.MaxBytesReader(w, r.Body, maxBody))
	}
	if err != nil {
		http.Error(w, "open database: "+err.Error(), http.StatusBadRequest)
		return
	}
	tables, err := d.Tables(r.Context())
	if err != nil {
		d.Close()
		http.Error(w, "open database: "+err.Error(), http.StatusBadRequest)
		return
	}
	id := s.sessions.add(d)
	logger.Debug("query session %s opened with %d tables", id, len(tables))

	writeJSON(w, queryResponse{OK: true, ID: id.String(), Tables: tables})
}

// handleQueryExec runs a script in a session.
func (s *Server) handleQueryExec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	d, id, err := s.sessions.get(req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	results, err := d.Exec(r.Context(), req.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, queryResponse{OK: true, ID: id.String(), Results: results})
}

// handleQueryClose ends a session.
func (s *Server) handleQueryClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	d, id, ok := s.sessions.remove(req.ID)
	if !ok {
		http.Error(w, fmt.Sprintf("no query session %s", req.ID), http.StatusNotFound)
		return
	}
	if err := d.Close(); err != nil {
		logger.Error("close query session %s: %v", id, err)
	}
	writeJSON(w, queryResponse{OK: true, ID: id.String()})
}

// handleQueryExport downloads the session database as a SQLite file.
func (s *Server) handleQueryExport(w http.ResponseWriter, r *http.Request) {
	d, id, err := s.sessions.get(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	dir, err := os.MkdirTemp("", "dbizzy-export-")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "export.db")
	size, err := d.Export(r.Context(), path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	logger.Info("exported query session %s (%s)", id, humanize.Bytes(uint64(size)))

	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="dbizzy.db"`)
	http.ServeFile(w, r, path)
}
