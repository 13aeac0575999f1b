package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

type ServiceAPI interface {
	Me(ctx context.Context, caller identity.Identity) (*User, error)
	List(ctx context.Context, caller identity.Identity, dto ListUsersDTO) ([]*User, error)
	AssignRole(ctx context.Context, caller identity.Identity, id string, dto AssignRoleDTO) (*User, error)
}

type Service struct {
	repo   Repository
	policy identity.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

func (s *Service) Me(ctx context.Context, caller identity.Identity) (*User, error) {
	if caller.UserID == "" {
		return nil, internal.ErrMissingCredentials
	}
	return s.get(ctx, caller.UserID)
}

// List returns every user, optionally narrowed to one role.
func (s *Service) List(ctx context.Context, caller identity.Identity, dto ListUsersDTO) ([]*User, error) {
	if err := s.policy.Authorize(caller, identity.ResourceUser, identity.ActionList); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, identity.Role(dto.Role))
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *Service) AssignRole(ctx context.Context, caller identity.Identity, id string, dto AssignRoleDTO) (*User, error) {
	if err := s.policy.Authorize(caller, identity.ResourceUser, identity.ActionAssignRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	role := identity.Role(dto.Role)
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("failed to update role", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.logger.Info("user role updated",
		"user_id", id,
		"from", u.Role,
		"to", role,
		"admin_id", caller.UserID)

	u.Role = role
	return u, nil
}

func (s *Service) get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return u, nil
}
