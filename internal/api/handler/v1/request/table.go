package request

import validation "github.com/go-ozzo/ozzo-validation"

type CreateTableRequest struct {
	Number int    `json:"number"`
	State  string `json:"state"`
}

func (req *CreateTableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required, validation.Min(1)),
		validation.Field(&req.State, validation.In("available", "occupied", "reserved")),
	)
}

type UpdateTableStateRequest struct {
	State string `json:"state"`
}

func (req *UpdateTableStateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.State, validation.Required),
	)
}
