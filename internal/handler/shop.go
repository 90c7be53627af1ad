package handler

import (
	"encoding/json"
	"net/http"

	"github.com/evertsen/kidschores/internal/engine"
	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/websocket"
)

type ShopHandler struct {
	engine *engine.Engine
	hub    *websocket.Hub
}

func NewShopHandler(eng *engine.Engine, hub *websocket.Hub) *ShopHandler {
	return &ShopHandler{engine: eng, hub: hub}
}

func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.ListShopItems()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if items == nil {
		items = []model.ShopItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.engine.GetShopItem(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShopHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string         `json:"title"`
		Price   int            `json:"price"`
		Icon    string         `json:"icon"`
		Image   string         `json:"image"`
		Active  *bool          `json:"active"`
		Actions []model.Action `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.engine.AddShopItem(engine.ItemParams{
		Title:   req.Title,
		Price:   req.Price,
		Icon:    req.Icon,
		Image:   req.Image,
		Active:  req.Active,
		Actions: req.Actions,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("shop_item", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShopHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   *string        `json:"title"`
		Price   *int           `json:"price"`
		Icon    *string        `json:"icon"`
		Image   *string        `json:"image"`
		Active  *bool          `json:"active"`
		Actions []model.Action `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.engine.UpdateShopItem(r.PathValue("id"), engine.ItemUpdate{
		Title:   req.Title,
		Price:   req.Price,
		Icon:    req.Icon,
		Image:   req.Image,
		Active:  req.Active,
		Actions: req.Actions,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("shop_item", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *ShopHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.engine.DeleteShopItem(id); err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("shop_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID string `json:"child_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	purchase, err := h.engine.BuyShopItem(req.ChildID, r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("purchase", "created", purchase.ID, nil))
	h.hub.Broadcast(websocket.NewMessage("child", "updated", purchase.ChildID, nil))
	writeJSON(w, http.StatusCreated, purchase)
}

func (h *ShopHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	var (
		purchases []model.Purchase
		err       error
	)
	if childID := r.URL.Query().Get("child_id"); childID != "" {
		purchases, err = h.engine.ListPurchasesByChild(childID)
	} else {
		purchases, err = h.engine.ListPurchases()
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (h *ShopHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	var childID *string
	if v := r.URL.Query().Get("child_id"); v != "" {
		childID = &v
	}

	if err := h.engine.ClearShopHistory(childID); err != nil {
		writeEngineError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("purchase", "cleared", "", nil))
	w.WriteHeader(http.StatusNoContent)
}
