package request

import validation "github.com/go-ozzo/ozzo-validation"

type CreateOrderRequest struct {
	TableNumber int    `json:"table_number"`
	Details     string `json:"details"`
}

func (req *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TableNumber, validation.Required, validation.Min(1)),
		validation.Field(&req.Details, validation.Length(0, 500)),
	)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (req *UpdateOrderStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required),
	)
}

type AddOrderLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func (req *AddOrderLineRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}
