package request

import validation "github.com/go-ozzo/ozzo-validation"

type CreateMovementRequest struct {
	ProductID uint   `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

func (req *CreateMovementRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Type, validation.Required, validation.In("in", "out", "entrada", "salida")),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Notes, validation.Length(0, 255)),
	)
}

// MovementType normalizes the legacy Spanish direction names still used by
// older clients.
func (req *CreateMovementRequest) MovementType() string {
	switch req.Type {
	case "entrada":
		return "in"
	case "salida":
		return "out"
	}
	return req.Type
}

type UpdateMovementRequest struct {
	ProductID uint   `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

func (req *UpdateMovementRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Type, validation.Required, validation.In("in", "out", "entrada", "salida")),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Notes, validation.Length(0, 255)),
	)
}

func (req *UpdateMovementRequest) MovementType() string {
	switch req.Type {
	case "entrada":
		return "in"
	case "salida":
		return "out"
	}
	return req.Type
}
