package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/websocket"
)

type TaskHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
}

func NewTaskHandler(eng *engine.Engine, hub *websocket.Hub) *TaskHandler {
	return &TaskHandler{engine: eng, hub: hub}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.engine.ListTasks()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.engine.GetTask(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		Points        int        `json:"points"`
		Due           *time.Time `json:"due"`
		ChildID       *string    `json:"child_id"`
		RepeatDays    []any      `json:"repeat_days"`
		RepeatChildID *string    `json:"repeat_child_id"`
		Icon          string     `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.AddTask(engine.TaskParams{
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		Due:           req.Due,
		ChildID:       req.ChildID,
		RepeatDays:    req.RepeatDays,
		RepeatChildID: req.RepeatChildID,
		Icon:          req.Icon,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Points      *int       `json:"points"`
		Due         *time.Time `json:"due"`
		Icon        *string    `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.UpdateTask(r.PathValue("id"), engine.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Due:         req.Due,
		Icon:        req.Icon,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.engine.DeleteTask(id); err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID *string `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.AssignTask(r.PathValue("id"), req.ChildID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.SetTaskStatus(r.PathValue("id"), req.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID,
		map[string]any{"status": task.Status}))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	task, err := h.engine.ApproveTask(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "approved", task.ID, nil))
	if task.AssignedTo != nil {
		h.hub.Broadcast(websocket.NewMessage("child", "updated", *task.AssignedTo, nil))
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) SetRepeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days    []any   `json:"days"`
		ChildID *string `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.SetTaskRepeat(r.PathValue("id"), req.Days, req.ChildID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) SetIcon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.engine.SetTaskIcon(r.PathValue("id"), req.Icon)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}
