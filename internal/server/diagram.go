package server

import (
	"io"
	"net/http"

	"dbizzy/internal/graph"
	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
)

// handleDiagram draws DDL text. POST parses the request body on its own;
// GET returns the current snapshot of the shared preview. With
// ?format=mermaid the diagram is returned as Mermaid text instead of JSON.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var snap preview.Snapshot
	switch r.Method {
	case http.MethodGet:
		snap = s.preview.Current()
	case http.MethodPost:
		text, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		snap = preview.Render(string(text), s.opts)
		if snap.Empty {
			logger.Warn("no tables found in %d lines of posted text", snap.Stats.Lines)
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.Mermaid(snap.Schema)) //nolint:errcheck
		return
	}
	writeJSON(w, snap)
}
