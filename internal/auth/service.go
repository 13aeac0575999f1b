package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthResponseV1, error)
	Register(ctx context.Context, dto RegisterDTO) (AuthResponseV1, error)
	Verify(ctx context.Context, token string) (identity.Identity, error)
}

// Service is the main auth service with dependencies
type Service struct {
	accounts       AccountRepository
	tokenGenerator TokenGenerator
	notifier       notification.Notifier
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(accounts AccountRepository, tokenGen TokenGenerator, notifier notification.Notifier, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:       accounts,
		tokenGenerator: tokenGen,
		notifier:       notifier,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a signed token
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthResponseV1, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return AuthResponseV1{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return AuthResponseV1{}, ErrInvalidCredentials
		}
		return AuthResponseV1{}, internal.NewInternalError("failed to load account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected", "email", dto.Email)
		return AuthResponseV1{}, ErrInvalidCredentials
	}

	return s.issue(account)
}

// Register creates a public_user account and tells the admins about it.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (AuthResponseV1, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return AuthResponseV1{}, err
	}

	if _, err := s.accounts.GetByEmail(ctx, dto.Email); err == nil {
		return AuthResponseV1{}, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return AuthResponseV1{}, internal.NewInternalError("failed to check email", err)
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return AuthResponseV1{}, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	account := &Account{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         identity.RolePublicUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResponseV1{}, ErrEmailTaken
		}
		return AuthResponseV1{}, internal.NewInternalError("failed to create account", err)
	}

	s.logger.Info("user registered", "user_id", account.ID, "email", account.Email)

	message := fmt.Sprintf("New user registered: %s (%s). Assign a role if necessary.", account.Name, account.Email)
	if err := s.notifier.Notify(ctx, notification.Admins(), message, notification.TypeUser); err != nil {
		s.logger.Error("failed to notify admins of registration", "user_id", account.ID, "error", err)
	}

	return s.issue(account)
}

// Verify resolves a bearer token into the caller's current identity. The
// account is reloaded so role changes apply without a new token.
func (s *Service) Verify(ctx context.Context, token string) (identity.Identity, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return identity.Identity{}, err
	}

	account, err := s.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return identity.Identity{}, ErrInvalidToken
		}
		return identity.Identity{}, internal.NewInternalError("failed to load account", err)
	}

	return account.Identity(), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issue(account *Account) (AuthResponseV1, error) {
	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(account.ID, account.Role)
	if err != nil {
		return AuthResponseV1{}, internal.NewInternalError("failed to issue token", err)
	}
	return newAuthResponse(account, token, expiresAt), nil
}
