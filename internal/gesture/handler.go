package gesture

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geniusclasses/geniusclasses/internal/httputil"
	"github.com/go-chi/chi/v5"
)

const maxTraceBodyBytes = 64 << 10

type Handler struct {
	institute string
}

func NewHandler(institute string) *Handler {
	return &Handler{institute: institute}
}

// ClientSettings is a preset as the browser script consumes it.
type ClientSettings struct {
	Name                  string  `json:"name"`
	HoldThresholdMs       int64   `json:"holdThresholdMs"`
	DragThreshold         float64 `json:"dragThreshold"`
	RequireHoldBeforeDrag bool    `json:"requireHoldBeforeDrag"`
	ProgressIntervalMs    int64   `json:"progressIntervalMs"`
	UnlockPath            string  `json:"unlockPath"`
	DecoyMessage          string  `json:"decoyMessage"`
}

func SettingsFor(cfg Config) ClientSettings {
	return ClientSettings{
		Name:                  cfg.Name,
		HoldThresholdMs:       cfg.HoldThreshold.Milliseconds(),
		DragThreshold:         cfg.DragThreshold,
		RequireHoldBeforeDrag: cfg.RequireHoldBeforeDrag,
		ProgressIntervalMs:    cfg.ProgressInterval.Milliseconds(),
		UnlockPath:            cfg.UnlockPath,
		DecoyMessage:          cfg.DecoyMessage,
	}
}

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	cfg, ok := Preset(chi.URLParam(r, "preset"), h.institute)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown gesture")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SettingsFor(cfg))
}

type verifyRequest struct {
	Events []Event `json:"events"`
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "preset")
	cfg, ok := Preset(name, h.institute)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown gesture")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTraceBodyBytes)).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := Replay(r.Context(), cfg, req.Events)
	if err != nil {
		if errors.Is(err, ErrInvalidTrace) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("gesture: replay failed", "gesture", name, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not verify gesture")
		return
	}

	if out.Unlocked {
		slog.Info("gesture: unlocked", "gesture", name, "client_ip", httputil.ClientIP(r))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
