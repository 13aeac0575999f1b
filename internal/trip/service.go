package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/events"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/user"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller identity.Identity, dto CreateTripDTO) (*Trip, error)
	Approve(ctx context.Context, caller identity.Identity, id string, dto ApproveTripDTO) (*Trip, error)
	Reject(ctx context.Context, caller identity.Identity, id string) (*Trip, error)
	List(ctx context.Context, caller identity.Identity) ([]*Trip, error)
}

// VehicleReader is the part of the vehicle registry approvals need.
type VehicleReader interface {
	GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

type Service struct {
	repo     Repository
	vehicles VehicleReader
	users    user.Directory
	notifier notification.Notifier
	events   events.Publisher
	policy   identity.Authorizer
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	vehicles VehicleReader,
	users user.Directory,
	notifier notification.Notifier,
	publisher events.Publisher,
	policy identity.Authorizer,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		vehicles: vehicles,
		users:    users,
		notifier: notifier,
		events:   publisher,
		policy:   policy,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, dto CreateTripDTO) (*Trip, error) {
	if err := s.policy.Authorize(caller, identity.ResourceTrip, identity.ActionCreate); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Trip{
		ID:          uuid.NewString(),
		RequestedBy: caller.UserID,
		Status:      StatusPending,
		TripDate:    *dto.TripDate,
		Destination: dto.Destination,
		Reason:      dto.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create trip", "error", err, "user_id", caller.UserID)
		return nil, internal.NewInternalError("failed to create trip", err)
	}

	s.logger.Info("trip requested", "trip_id", t.ID, "user_id", caller.UserID)
	s.notify(ctx, notification.Admins(), fmt.Sprintf("New trip request from %s.", caller.Name))
	return t, nil
}

func (s *Service) Approve(ctx context.Context, caller identity.Identity, id string, dto ApproveTripDTO) (*Trip, error) {
	if err := s.policy.Authorize(caller, identity.ResourceTrip, identity.ActionDecide); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.vehicles.GetByID(ctx, dto.VehicleID); err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, ErrInvalidVehicle
		}
		return nil, internal.NewInternalError("failed to load vehicle", err)
	}

	driver, err := s.users.GetByID(ctx, dto.DriverID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidDriver
		}
		return nil, internal.NewInternalError("failed to load driver", err)
	}
	if !driver.IsDriver() {
		return nil, ErrInvalidDriver
	}

	t, err := s.transition(ctx, id, StatusApproved, &Assignment{VehicleID: dto.VehicleID, DriverID: dto.DriverID})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip approved",
		"trip_id", t.ID,
		"vehicle_id", dto.VehicleID,
		"driver_id", dto.DriverID,
		"admin_id", caller.UserID)

	s.notify(ctx, notification.ToUser(dto.DriverID), "You have been assigned to a new trip.")
	s.notify(ctx, notification.ToUser(t.RequestedBy), "Your trip request has been approved.")
	s.publish(ctx, events.NewTripApprovedEvent(t.ID, dto.VehicleID, dto.DriverID))
	return t, nil
}

func (s *Service) Reject(ctx context.Context, caller identity.Identity, id string) (*Trip, error) {
	if err := s.policy.Authorize(caller, identity.ResourceTrip, identity.ActionDecide); err != nil {
		return nil, err
	}

	t, err := s.transition(ctx, id, StatusRejected, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip rejected", "trip_id", t.ID, "admin_id", caller.UserID)
	s.notify(ctx, notification.ToUser(t.RequestedBy), "Your trip request has been rejected.")
	return t, nil
}

// List shows admins every trip and department heads their own.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*Trip, error) {
	if err := s.policy.Authorize(caller, identity.ResourceTrip, identity.ActionList); err != nil {
		return nil, err
	}

	requester := caller.UserID
	if caller.Is(identity.RoleAdmin) {
		requester = ""
	}

	trips, err := s.repo.List(ctx, requester)
	if err != nil {
		s.logger.Error("failed to list trips", "error", err, "user_id", caller.UserID)
		return nil, internal.NewInternalError("failed to list trips", err)
	}
	return trips, nil
}

func (s *Service) transition(ctx context.Context, id string, status Status, assignment *Assignment) (*Trip, error) {
	var result *Trip
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		t, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !t.IsPending() {
			s.logger.Warn("trip not pending", "trip_id", id, "current_status", t.Status)
			return ErrTripNotPending
		}
		if err := tx.Transition(ctx, id, status, assignment); err != nil {
			return err
		}

		t.Status = status
		if assignment != nil {
			t.VehicleID = &assignment.VehicleID
			t.DriverID = &assignment.DriverID
		}
		t.UpdatedAt = time.Now()
		result = t
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("trip transition failed", "error", err, "trip_id", id)
		return nil, internal.NewInternalError("failed to update trip", err)
	}
	return result, nil
}

func (s *Service) notify(ctx context.Context, target notification.Target, message string) {
	if err := s.notifier.Notify(ctx, target, message, notification.TypeTrip); err != nil {
		s.logger.Error("failed to dispatch trip notification", "error", err, "message", message)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
