package engine

import (
	"context"
	"time"

	"github.com/evertsen/kidschores/internal/model"
)

// runActions executes a purchase's action sequence strictly in order.
// Service steps are handed to the executor fire-and-forget; delay steps
// sleep on this goroutine only. The child and item are re-fetched before
// every step: if either has been deleted while the pipeline slept, the
// remaining steps are skipped silently. The purchase record itself is
// already history.
func (e *Engine) runActions(ctx context.Context, purchaseID, childID, itemID string, actions []model.Action) {
	logger := e.logger.With("purchase_id", purchaseID)

	for i, a := range actions {
		child, err := e.children.GetByID(childID)
		if err != nil {
			logger.Error("pipeline: look up child", "step", i, "error", err)
			return
		}
		item, err := e.shop.GetItemByID(itemID)
		if err != nil {
			logger.Error("pipeline: look up item", "step", i, "error", err)
			return
		}
		if child == nil || item == nil {
			logger.Debug("pipeline halted: entity removed",
				"step", i, "child_gone", child == nil, "item_gone", item == nil)
			return
		}

		switch a.Type {
		case model.ActionDelay:
			e.sleep(time.Duration(a.Seconds) * time.Second)
		case model.ActionService:
			if err := e.executor.Dispatch(ctx, a); err != nil {
				// Dispatch failures don't stop the sequence.
				logger.Error("pipeline: dispatch action",
					"step", i, "domain", a.Domain, "service", a.Service, "error", err)
			}
		}
	}
}
