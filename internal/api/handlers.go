package api

import (
	"encoding/json"
	"net/http"

	"connectgame/internal/grid"
)

// Handler methods for routerHandlers. These are used by both the standalone
// router (for testing) and the full Server.

func (h *routerHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Snapshot())
}

func (h *routerHandlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cfg)
}

func (h *routerHandlers) handleActionMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From grid.Position `json:"from"`
		To   grid.Position `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.engine.ActionMove(req.From, req.To)
	writeJSON(w, map[string]bool{"accepted": true})
}

func (h *routerHandlers) handleActionTap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position grid.Position `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.engine.ActionTap(req.Position)
	writeJSON(w, map[string]bool{"accepted": true})
}

// Helper functions (package-level for reuse).

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
