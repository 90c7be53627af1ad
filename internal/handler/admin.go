package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/evertsen/kidschores/internal/backup"
	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/rollover"
	"github.com/evertsen/kidschores/internal/websocket"
)

// AdminHandler serves the dashboard summary and the maintenance operations.
type AdminHandler struct {
	engine    *engine.Engine
	hub       *websocket.Hub
	scheduler *rollover.Scheduler
	backups   *backup.Manager
}

func NewAdminHandler(eng *engine.Engine, hub *websocket.Hub, sched *rollover.Scheduler, backups *backup.Manager) *AdminHandler {
	return &AdminHandler{engine: eng, hub: hub, scheduler: sched, backups: backups}
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summary()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *AdminHandler) PurgeOrphans(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.engine.PurgeOrphans()
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if cleared > 0 {
		h.hub.Broadcast(websocket.NewMessage("task", "updated", "", nil))
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": cleared})
}

func (h *AdminHandler) RunRollover(w http.ResponseWriter, r *http.Request) {
	h.scheduler.RunOnce(time.Now())
	h.hub.Broadcast(websocket.NewMessage("task", "updated", "", nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	filename, err := h.backups.RunNow(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": filename})
}

func (h *AdminHandler) BackupStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backups.Status())
}

func (h *AdminHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File  string `json:"file"`
		S3Key string `json:"s3_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	var err error
	switch {
	case req.File != "":
		err = h.backups.RestoreFile(req.File)
	case req.S3Key != "":
		err = h.backups.RestoreS3(r.Context(), req.S3Key)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file or s3_key is required"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("state", "restored", "", nil))
	w.WriteHeader(http.StatusNoContent)
}
