package request

import validation "github.com/go-ozzo/ozzo-validation"

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

func (req *CreateProductRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.Category, validation.Length(0, 50)),
		validation.Field(&req.Price, validation.Required, validation.Min(0.0)),
	)
}
