package domain

import "time"

// KitchenEvent is pushed over the kitchen websocket feed whenever an order is
// created, changes status, or a table is settled.
type KitchenEvent struct {
	Type        string    `json:"type"` // "order_created", "status_changed", "table_settled"
	OrderID     uint      `json:"order_id,omitempty"`
	TableNumber int       `json:"table_number"`
	Status      string    `json:"status,omitempty"`
	At          time.Time `json:"at"`
}
