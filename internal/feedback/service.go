package feedback

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
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitFeedbackDTO) (*Feedback, error)
	List(ctx context.Context, caller identity.Identity) ([]*Feedback, error)
	Respond(ctx context.Context, caller identity.Identity, id string, dto RespondDTO) (*Feedback, error)
}

type Service struct {
	repo     Repository
	notifier notification.Notifier
	policy   identity.Authorizer
	logger   *slog.Logger
}

func NewService(repo Repository, notifier notification.Notifier, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, policy: policy, logger: logger}
}

// Submit needs no account.
func (s *Service) Submit(ctx context.Context, dto SubmitFeedbackDTO) (*Feedback, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	f := &Feedback{
		ID:        uuid.NewString(),
		Name:      dto.Name,
		Email:     dto.Email,
		Message:   dto.Message,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Error("failed to store feedback", "error", err)
		return nil, internal.NewInternalError("failed to submit feedback", err)
	}

	s.logger.Info("feedback received", "feedback_id", f.ID)
	if err := s.notifier.Notify(ctx, notification.Admins(),
		fmt.Sprintf("New feedback received from %s", f.Name), notification.TypeFeedback); err != nil {
		s.logger.Error("failed to dispatch feedback notification", "error", err, "feedback_id", f.ID)
	}
	return f, nil
}

func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*Feedback, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFeedback, identity.ActionList); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list feedback", "error", err)
		return nil, internal.NewInternalError("failed to list feedback", err)
	}
	return items, nil
}

func (s *Service) Respond(ctx context.Context, caller identity.Identity, id string, dto RespondDTO) (*Feedback, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFeedback, identity.ActionRespond); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFeedbackNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, internal.NewInternalError("failed to load feedback", err)
	}

	if err := s.repo.Respond(ctx, id, dto.Response); err != nil {
		s.logger.Error("failed to store feedback response", "error", err, "feedback_id", id)
		return nil, internal.NewInternalError("failed to respond to feedback", err)
	}

	f.Status = StatusResponded
	f.Response = &dto.Response
	f.UpdatedAt = time.Now()

	s.logger.Info("feedback responded", "feedback_id", id, "admin_id", caller.UserID)
	return f, nil
}
