package websocket

import (
	"context"

	"github.com/evertsen/kidschores/internal/model"
)

// Executor publishes shop item actions to connected clients. The home
// automation bridge on the other end of the socket performs the actual
// service call.
type Executor struct {
	hub *Hub
}

func NewExecutor(hub *Hub) *Executor {
	return &Executor{hub: hub}
}

// Dispatch broadcasts one action. The broadcast is fire-and-forget; a
// client with a full buffer misses the message.
func (e *Executor) Dispatch(ctx context.Context, a model.Action) error {
	e.hub.Broadcast(NewMessage("action", "dispatch", "", map[string]any{
		"domain":    a.Domain,
		"service":   a.Service,
		"entity_id": a.EntityID,
	}))
	return nil
}
