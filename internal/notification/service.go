package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

type ServiceAPI interface {
	ListForUser(ctx context.Context, caller identity.Identity) ([]*Notification, error)
	MarkRead(ctx context.Context, caller identity.Identity, id string) (*Notification, error)
}

type Service struct {
	repo   Repository
	policy identity.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

// ListForUser returns the caller's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, caller identity.Identity) ([]*Notification, error) {
	if err := s.policy.Authorize(caller, identity.ResourceNotification, identity.ActionRead); err != nil {
		return nil, err
	}

	items, err := s.repo.ListForRecipient(ctx, caller.UserID, caller.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return items, nil
}

// MarkRead acknowledges a notification. A role broadcast carries a single
// read flag, so the first holder of the role to read it marks it read for all.
func (s *Service) MarkRead(ctx context.Context, caller identity.Identity, id string) (*Notification, error) {
	if err := s.policy.Authorize(caller, identity.ResourceNotification, identity.ActionRead); err != nil {
		return nil, err
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, internal.NewInternalError("failed to load notification", err)
	}

	if !n.VisibleTo(caller) {
		s.logger.Warn("mark read denied", "notification_id", id, "user_id", caller.UserID)
		return nil, ErrNotRecipient
	}

	if n.IsRead {
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, internal.NewInternalError("failed to mark notification as read", err)
	}
	n.IsRead = true

	s.logger.Info("notification marked read", "notification_id", id, "user_id", caller.UserID)
	return n, nil
}
