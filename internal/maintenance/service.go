package maintenance

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
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller identity.Identity, dto CreateRequestDTO) (*Request, error)
	Approve(ctx context.Context, caller identity.Identity, id string, adminResponse *string) (*Request, error)
	Reject(ctx context.Context, caller identity.Identity, id string, adminResponse *string) (*Request, error)
	ReportFixed(ctx context.Context, caller identity.Identity, id string) (*Request, error)
	MarkComplete(ctx context.Context, caller identity.Identity, id string) (*Request, error)
	List(ctx context.Context, caller identity.Identity) ([]*Request, error)
}

type Service struct {
	repo     Repository
	notifier notification.Notifier
	events   events.Publisher
	policy   identity.Authorizer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	notifier notification.Notifier,
	publisher events.Publisher,
	policy identity.Authorizer,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		events:   publisher,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, dto CreateRequestDTO) (*Request, error) {
	if err := s.policy.Authorize(caller, identity.ResourceMaintenance, identity.ActionCreate); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	v, err := s.assignedVehicle(ctx, s.repo.Vehicles(), dto.VehicleID, caller)
	if err != nil {
		return nil, s.storageError(err, "failed to load vehicle")
	}

	now := s.now()
	m := &Request{
		ID:               uuid.NewString(),
		VehicleID:        v.ID,
		DriverID:         caller.UserID,
		RequestType:      RequestType(dto.RequestType),
		IssueDescription: dto.IssueDescription,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("failed to create maintenance request", "error", err, "user_id", caller.UserID)
		return nil, internal.NewInternalError("failed to create maintenance request", err)
	}

	s.logger.Info("maintenance requested",
		"maintenance_id", m.ID,
		"vehicle_id", m.VehicleID,
		"request_type", m.RequestType,
		"user_id", caller.UserID)

	s.notify(ctx, notification.Admins(),
		fmt.Sprintf("New maintenance request from %s for vehicle %s.", caller.Name, v.PlateNumber))
	s.publish(ctx, events.NewMaintenanceEvent(events.EventTypeMaintenanceCreated, m.ID, m.VehicleID, m.DriverID))
	return m, nil
}

// Approve puts the linked vehicle in maintenance in the same transaction.
func (s *Service) Approve(ctx context.Context, caller identity.Identity, id string, adminResponse *string) (*Request, error) {
	return s.decide(ctx, caller, id, StatusApproved, adminResponse)
}

func (s *Service) Reject(ctx context.Context, caller identity.Identity, id string, adminResponse *string) (*Request, error) {
	return s.decide(ctx, caller, id, StatusRejected, adminResponse)
}

func (s *Service) decide(ctx context.Context, caller identity.Identity, id string, to Status, adminResponse *string) (*Request, error) {
	if err := s.policy.Authorize(caller, identity.ResourceMaintenance, identity.ActionDecide); err != nil {
		return nil, err
	}

	var (
		result *Request
		plate  string
	)
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		m, err := s.load(ctx, tx, id, StatusPending)
		if err != nil {
			return err
		}
		if err := tx.Transition(ctx, m.ID, StatusPending, to, adminResponse); err != nil {
			return err
		}

		v, err := tx.Vehicles().GetByID(ctx, m.VehicleID)
		switch {
		case err == nil:
			plate = v.PlateNumber
			if to == StatusApproved {
				if err := tx.Vehicles().SetStatus(ctx, v.ID, vehicle.StatusInMaintenance); err != nil {
					return err
				}
			}
		case errors.Is(err, vehicle.ErrVehicleNotFound):
			s.logger.Warn("maintenance request references a missing vehicle",
				"maintenance_id", m.ID,
				"vehicle_id", m.VehicleID)
			plate = m.VehicleID
		default:
			return err
		}

		m.Status = to
		m.AdminResponse = adminResponse
		m.UpdatedAt = s.now()
		result = m
		return nil
	})
	if err != nil {
		return nil, s.storageError(err, "failed to update maintenance request")
	}

	s.logger.Info("maintenance request decided",
		"maintenance_id", result.ID,
		"status", result.Status,
		"admin_id", caller.UserID)

	s.notify(ctx, notification.ToUser(result.DriverID),
		fmt.Sprintf("Your maintenance request for vehicle %s has been %s by admin.", plate, result.Status))
	return result, nil
}

// ReportFixed lets the assigned driver close an approved request, which
// returns the vehicle to service.
func (s *Service) ReportFixed(ctx context.Context, caller identity.Identity, id string) (*Request, error) {
	if err := s.policy.Authorize(caller, identity.ResourceMaintenance, identity.ActionReportFixed); err != nil {
		return nil, err
	}

	var (
		result *Request
		plate  string
	)
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		m, err := s.load(ctx, tx, id, StatusApproved)
		if err != nil {
			return err
		}
		v, err := s.assignedVehicle(ctx, tx.Vehicles(), m.VehicleID, caller)
		if err != nil {
			return err
		}
		if err := tx.Vehicles().SetStatus(ctx, v.ID, vehicle.StatusActive); err != nil {
			return err
		}
		if err := tx.Transition(ctx, m.ID, StatusApproved, StatusCompleted, m.AdminResponse); err != nil {
			return err
		}

		plate = v.PlateNumber
		m.Status = StatusCompleted
		m.UpdatedAt = s.now()
		result = m
		return nil
	})
	if err != nil {
		return nil, s.storageError(err, "failed to report maintenance fixed")
	}

	s.logger.Info("maintenance reported fixed",
		"maintenance_id", result.ID,
		"vehicle_id", result.VehicleID,
		"user_id", caller.UserID)

	s.notify(ctx, notification.Admins(),
		fmt.Sprintf("Vehicle %s has been reported fixed by %s.", plate, caller.Name))
	return result, nil
}

// MarkComplete closes a request in any status and records the maintenance
// date on the vehicle when it still exists.
func (s *Service) MarkComplete(ctx context.Context, caller identity.Identity, id string) (*Request, error) {
	if err := s.policy.Authorize(caller, identity.ResourceMaintenance, identity.ActionComplete); err != nil {
		return nil, err
	}

	var result *Request
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		m, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Complete(ctx, m.ID); err != nil {
			return err
		}

		now := s.now()
		err = tx.Vehicles().StampLastMaintenance(ctx, m.VehicleID, now)
		if err != nil && !errors.Is(err, vehicle.ErrVehicleNotFound) {
			return err
		}

		m.Status = StatusCompleted
		m.UpdatedAt = now
		result = m
		return nil
	})
	if err != nil {
		return nil, s.storageError(err, "failed to complete maintenance request")
	}

	s.logger.Info("maintenance completed", "maintenance_id", result.ID, "admin_id", caller.UserID)
	s.publish(ctx, events.NewMaintenanceEvent(events.EventTypeMaintenanceCompleted, result.ID, result.VehicleID, result.DriverID))
	return result, nil
}

// List shows admins every request and drivers their own.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*Request, error) {
	if err := s.policy.Authorize(caller, identity.ResourceMaintenance, identity.ActionList); err != nil {
		return nil, err
	}

	driverID := caller.UserID
	if caller.Is(identity.RoleAdmin) {
		driverID = ""
	}

	items, err := s.repo.List(ctx, driverID)
	if err != nil {
		s.logger.Error("failed to list maintenance requests", "error", err)
		return nil, internal.NewInternalError("failed to list maintenance requests", err)
	}
	return items, nil
}

func (s *Service) load(ctx context.Context, tx Repository, id string, want Status) (*Request, error) {
	m, err := tx.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != want {
		s.logger.Warn("maintenance request in unexpected status",
			"maintenance_id", id,
			"current_status", m.Status,
			"expected_status", want)
		return nil, StaleStatusError(want)
	}
	return m, nil
}

func (s *Service) assignedVehicle(ctx context.Context, vehicles VehicleStore, vehicleID string, caller identity.Identity) (*vehicle.Vehicle, error) {
	v, err := vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsAssignedTo(caller.UserID) {
		s.logger.Warn("maintenance refused: not the assigned driver",
			"vehicle_id", v.ID,
			"user_id", caller.UserID)
		return nil, ErrNotAssignedDriver
	}
	return v, nil
}

func (s *Service) storageError(err error, message string) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error(message, "error", err)
	return internal.NewInternalError(message, err)
}

func (s *Service) notify(ctx context.Context, target notification.Target, message string) {
	if err := s.notifier.Notify(ctx, target, message, notification.TypeMaintenance); err != nil {
		s.logger.Error("failed to dispatch maintenance notification", "error", err, "message", message)
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
