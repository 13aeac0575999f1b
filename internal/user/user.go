package user

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

// User is the public view of an account. The password hash never leaves
// the auth package.
type User struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (u *User) IsDriver() bool {
	return u.Role == identity.RoleDriver
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role identity.Role) ([]*User, error)
	UpdateRole(ctx context.Context, id string, role identity.Role) error
}

// Directory is the read side other workflows use to resolve users.
type Directory interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

var (
	ErrUserNotFound = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrInvalidRole  = internal.NewValidationError("Invalid role", internal.ErrCodeInvalidRole)
)

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      identity.Role(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
