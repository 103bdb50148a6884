package domain

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

type Table struct {
	ID     uint   `json:"id"`
	Number int    `json:"number"`
	State  string `json:"state"`
}

func IsValidTableState(state string) bool {
	switch state {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}
