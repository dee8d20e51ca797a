// Package handler exposes the dietdesk controllers over HTTP as JSON, CSV
// and printable HTML.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/workflow"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMutationError maps controller and workflow errors to a status code.
func writeMutationError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var verr *controller.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, controller.ErrCustomizationsRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "customizations"})
	case errors.Is(err, workflow.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		logger.Error("mutation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
