package response

import "github.com/RestVisor/restvisor-back/internal/domain"

// SettlementResponse reports the orders closed by a table settlement and the
// freed table. ClosedOrders is empty (not an error) when the table had no
// active orders.
type SettlementResponse struct {
	Message      string         `json:"message"`
	ClosedOrders []domain.Order `json:"closed_orders"`
	Table        domain.Table   `json:"table"`
}

// StockMovementResponse decorates a ledger entry with the product's stock
// after the movement was applied.
type StockMovementResponse struct {
	Movement domain.StockMovement `json:"movement"`
	NewStock int                  `json:"new_stock"`
}
