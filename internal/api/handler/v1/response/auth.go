package response

import "github.com/RestVisor/restvisor-back/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
