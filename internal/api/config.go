package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"langcover/pkg/config"
	"langcover/pkg/langtable"
)

// ConfigHandler reads and updates runtime settings.
type ConfigHandler struct {
	cfg   config.Provider
	table *langtable.Table
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg config.Provider, table *langtable.Table) *ConfigHandler {
	return &ConfigHandler{
		cfg:   cfg,
		table: table,
	}
}

// ConfigResponse is the payload of GET /api/config.
type ConfigResponse struct {
	Threshold   float64 `json:"threshold"`
	TableSource string  `json:"table_source"`
	Languages   int     `json:"languages"`
}

// ConfigRequest is the payload of PUT /api/config.
type ConfigRequest struct {
	Threshold *float64 `json:"threshold"`
}

// HandleGet handles GET /api/config.
func (h *ConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(r))
}

// HandleSet handles PUT /api/config.
func (h *ConfigHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Threshold != nil {
		v := *req.Threshold
		if math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(w, http.StatusBadRequest, "threshold must be a finite number")
			return
		}
		if err := h.cfg.SetThreshold(r.Context(), v); err != nil {
			slog.Error("Failed to persist threshold", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save threshold")
			return
		}
		slog.Info("Default threshold updated", "threshold", v, "request_id", RequestID(r.Context()))
	}

	writeJSON(w, http.StatusOK, h.snapshot(r))
}

// HandleReset handles DELETE /api/config, restoring the configured defaults.
func (h *ConfigHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.cfg.ResetThreshold(r.Context()); err != nil {
		slog.Error("Failed to reset threshold", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset threshold")
		return
	}
	slog.Info("Default threshold reset", "request_id", RequestID(r.Context()))
	writeJSON(w, http.StatusOK, h.snapshot(r))
}

func (h *ConfigHandler) snapshot(r *http.Request) ConfigResponse {
	return ConfigResponse{
		Threshold:   h.cfg.Threshold(r.Context()),
		TableSource: h.cfg.TableSource(r.Context()),
		Languages:   h.table.Len(),
	}
}
