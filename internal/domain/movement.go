package domain

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// StockMovement is one ledger entry. The ledger is append-only: corrections go
// through the stock service as "reverse old effect, apply new effect", never as
// a blind overwrite of the row.
type StockMovement struct {
	ID          uint         `json:"id"`
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	Type        MovementType `json:"type"`
	Quantity    int          `json:"quantity"`
	Notes       string       `json:"notes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty"`
}

// Opposite returns the movement type that undoes t.
func (t MovementType) Opposite() MovementType {
	if t == MovementIn {
		return MovementOut
	}
	return MovementIn
}

func (t MovementType) IsValid() bool {
	return t == MovementIn || t == MovementOut
}
