package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
)

// Account is the credential-bearing view of a user.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         identity.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) Identity() identity.Identity {
	return identity.Identity{UserID: a.ID, Role: a.Role, Name: a.Name, Email: a.Email}
}

type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) error
}

// TokenGenerator issues and verifies bearer tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, role identity.Role) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims
type Claims struct {
	UserID string        `json:"user_id"`
	Role   identity.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthUserV1 struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  identity.Role `json:"role"`
}

type AuthResponseV1 struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      AuthUserV1 `json:"user"`
}

func newAuthResponse(a *Account, token string, expiresAt time.Time) AuthResponseV1 {
	return AuthResponseV1{
		Token:     token,
		ExpiresAt: expiresAt,
		User: AuthUserV1{
			ID:    a.ID,
			Name:  a.Name,
			Email: a.Email,
			Role:  a.Role,
		},
	}
}

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrAccountNotFound    = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken         = internal.NewConflictError("User already exists", internal.ErrCodeEmailTaken)
)

func ToDataModel(a *Account) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *Account {
	return &Account{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         identity.Role(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
