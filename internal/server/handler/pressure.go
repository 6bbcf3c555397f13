package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hawkline/depthwatch/internal/domain"
)

// PressureHandler serves recent rows from the market pressure view.
type PressureHandler struct {
	store        domain.SnapshotStore
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewPressureHandler creates a PressureHandler reading from store.
func NewPressureHandler(store domain.SnapshotStore, defaultLimit int, logger *slog.Logger) *PressureHandler {
	return &PressureHandler{
		store:        store,
		defaultLimit: defaultLimit,
		maxLimit:     3600,
		logger:       logger.With(slog.String("component", "pressure_handler")),
	}
}

// ListRecent returns up to limit rows, newest first. An empty rows array is a
// normal response while the writer has not produced data yet.
// GET /api/pressure?limit=n
func (h *PressureHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	rows, err := h.store.ReadRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "read recent failed",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "store read failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(rows),
		"rows":  ToJSONRows(rows),
	})
}
