package handler

import (
	"encoding/json"
	"net/http"

	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/websocket"
)

type ChildHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
}

func NewChildHandler(eng *engine.Engine, hub *websocket.Hub) *ChildHandler {
	return &ChildHandler{engine: eng, hub: hub}
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.engine.ListChildren()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, err := h.engine.GetChild(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	child, err := h.engine.AddChild(req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "created", child.ID, nil))
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	child, err := h.engine.RenameChild(r.PathValue("id"), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "updated", child.ID, nil))
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.engine.RemoveChild(id); err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChildHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	child, err := h.engine.AddPoints(r.PathValue("id"), req.Delta)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "updated", child.ID,
		map[string]any{"points": child.Points}))
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) ResetPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID *string `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.engine.ResetPoints(req.ChildID); err != nil {
		writeEngineError(w, err)
		return
	}

	id := ""
	if req.ChildID != nil {
		id = *req.ChildID
	}
	h.hub.Broadcast(websocket.NewMessage("points", "reset", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
