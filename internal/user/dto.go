package user

import "github.com/frahmantamala/fleet-management/internal/core/identity"

type AssignRoleDTO struct {
	Role string `json:"role"`
}

func (d AssignRoleDTO) Validate() error {
	if !identity.Role(d.Role).Valid() {
		return ErrInvalidRole
	}
	return nil
}

type ListUsersDTO struct {
	Role string
}

func (d ListUsersDTO) Validate() error {
	if d.Role != "" && !identity.Role(d.Role).Valid() {
		return ErrInvalidRole
	}
	return nil
}
