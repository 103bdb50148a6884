package domain

import "time"

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusPaid      = "paid"
)

// statusAliases maps the legacy Spanish statuses still sent by older clients
// to the canonical enumeration.
var statusAliases = map[string]string{
	"en preparación": StatusPreparing,
	"en preparacion": StatusPreparing,
	"listo":          StatusReady,
	"entregado":      StatusDelivered,
	"pagado":         StatusPaid,
}

// NormalizeStatus resolves legacy aliases and reports whether the result is a
// recognized order status.
func NormalizeStatus(status string) (string, bool) {
	if canonical, ok := statusAliases[status]; ok {
		return canonical, true
	}
	switch status {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusPaid:
		return status, true
	}
	return status, false
}

// Order is one physical order row. A single table visit may accumulate several
// of these as the table orders successive rounds; Consolidate folds them back
// into one logical order. Orders reference tables by number, not id.
type Order struct {
	ID          uint        `json:"id"`
	TableNumber int         `json:"table_number"`
	Status      string      `json:"status"`
	Active      bool        `json:"active"`
	Details     string      `json:"details,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

type OrderLine struct {
	ID        uint     `json:"id"`
	OrderID   uint     `json:"order_id"`
	ProductID uint     `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// ConsolidatedOrder is the read-only merged view of every active order row for
// one table visit.
type ConsolidatedOrder struct {
	ID          uint               `json:"id"`
	TableNumber int                `json:"table_number"`
	Status      string             `json:"status"`
	Active      bool               `json:"active"`
	Details     string             `json:"details,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Lines       []ConsolidatedLine `json:"lines"`
}

type ConsolidatedLine struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// Consolidate folds the given order rows into one logical order. The rows must
// be sorted by creation time ascending; the earliest row supplies the identity
// fields. Lines are grouped by product id with quantities summed, keeping the
// insertion order of each product's first occurrence. Returns false when there
// is nothing to consolidate.
func Consolidate(orders []Order) (ConsolidatedOrder, bool) {
	if len(orders) == 0 {
		return ConsolidatedOrder{}, false
	}

	first := orders[0]
	consolidated := ConsolidatedOrder{
		ID:          first.ID,
		TableNumber: first.TableNumber,
		Status:      first.Status,
		Active:      first.Active,
		Details:     first.Details,
		CreatedAt:   first.CreatedAt,
		Lines:       []ConsolidatedLine{},
	}

	index := make(map[uint]int)
	for _, order := range orders {
		for _, line := range order.Lines {
			if i, ok := index[line.ProductID]; ok {
				consolidated.Lines[i].Quantity += line.Quantity
				continue
			}

			merged := ConsolidatedLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			}
			if line.Product != nil {
				merged.ProductName = line.Product.Name
				merged.UnitPrice = line.Product.Price
			}

			index[line.ProductID] = len(consolidated.Lines)
			consolidated.Lines = append(consolidated.Lines, merged)
		}
	}

	return consolidated, true
}
