package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/dietdesk/internal/backup"
	"github.com/dukerupert/dietdesk/internal/model"
)

const defaultBackupListLimit = 20

// BackupService is the part of backup.Manager the HTTP layer uses.
type BackupService interface {
	Enabled() bool
	Status() backup.Status
	List(limit int) ([]model.Backup, error)
	RunNow(ctx context.Context) (int64, error)
	Restore(ctx context.Context, id int64) error
}

type BackupHandler struct {
	backups BackupService
	logger  *slog.Logger
}

func NewBackupHandler(backups BackupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, logger: logger}
}

type backupListResponse struct {
	Status  backup.Status  `json:"status"`
	Backups []model.Backup `json:"backups"`
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultBackupListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	backups, err := h.backups.List(limit)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backupListResponse{Status: h.backups.Status(), Backups: backups})
}

// Run takes a snapshot now and waits for the upload to finish.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.backups.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": backup.ErrNotConfigured.Error()})
		return
	}
	id, err := h.backups.RunNow(r.Context())
	if err != nil {
		h.logger.Error("backup run", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	err = h.backups.Restore(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
	case errors.Is(err, backup.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(err, backup.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
	default:
		h.logger.Error("backup restore", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "restore failed"})
	}
}
