package server

import (
	"encoding/json"
	"net/http"

	"dbizzy/internal/db"
	"dbizzy/internal/graph"
	"dbizzy/internal/model"
	"dbizzy/pkg/config"
)

type schemaResponse struct {
	OK     bool         `json:"ok"`
	Schema model.Schema `json:"schema"`
	DOT    string       `json:"dot"`
}

// handleGetConnect returns the configured connection parameters.
func (s *Server) handleGetConnect(w http.ResponseWriter, r *http.Request) {
	dbc := s.cfg.Database
	dbc.Type = config.NormalizeDriver(dbc.Type)
	writeJSON(w, struct {
		OK     bool            `json:"ok"`
		Config config.DBConfig `json:"config"`
	}{OK: true, Config: dbc})
}

// handleConnect tests the posted connection parameters and, on success,
// makes them the active connection and returns its schema.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var dbReq config.DBConfig
	if err := json.NewDecoder(r.Body).Decode(&dbReq); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	driver, dsn, err := config.BuildDriverAndDSN(dbReq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	schema, err := db.ConnectAndExtract(r.Context(), driver, dsn, s.timeout)
	if err != nil {
		http.Error(w, "connection failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.SetActive(driver, dsn)

	writeJSON(w, schemaResponse{OK: true, Schema: schema, DOT: graph.DOT(schema, s.opts)})
}

// handleSchema extracts the schema of the active connection.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	driver, dsn := s.active()
	if driver == "" || dsn == "" {
		http.Error(w, "no active connection; POST /api/connect to create one", http.StatusBadRequest)
		return
	}
	schema, err := db.ConnectAndExtract(r.Context(), driver, dsn, s.timeout)
	if err != nil {
		http.Error(w, "failed to extract schema: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, schemaResponse{OK: true, Schema: schema, DOT: graph.DOT(schema, s.opts)})
}
