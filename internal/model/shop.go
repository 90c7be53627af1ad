package model

import "time"

// Action types.
const (
	ActionService = "service"
	ActionDelay   = "delay"
)

// Action is one step of a shop item's purchase sequence: either an abstract
// service call dispatched to the external executor, or a timed wait.
type Action struct {
	Type     string `json:"type"`
	Domain   string `json:"domain,omitempty"`
	Service  string `json:"service,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Seconds  int    `json:"seconds,omitempty"`
}

type ShopItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     int       `json:"price"`
	Icon      string    `json:"icon"`
	Image     string    `json:"image"`
	Active    bool      `json:"active"`
	Actions   []Action  `json:"actions"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase is an append-only history record. Title, price, icon and image
// are copied from the item at purchase time and never follow later edits.
type Purchase struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"child_id"`
	ChildName string    `json:"child_name"`
	ItemID    string    `json:"item_id"`
	Title     string    `json:"title"`
	Price     int       `json:"price"`
	Icon      string    `json:"icon"`
	Image     string    `json:"image"`
	Timestamp time.Time `json:"ts"`
}
