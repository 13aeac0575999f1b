package fuel

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
	"github.com/frahmantamala/fleet-management/internal/report"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller identity.Identity, dto CreateFuelLogDTO) (*FuelLog, error)
	Approve(ctx context.Context, caller identity.Identity, id string) (*FuelLog, error)
	Reject(ctx context.Context, caller identity.Identity, id string) (*FuelLog, error)
	List(ctx context.Context, caller identity.Identity) ([]*FuelLog, error)
	Consumption(ctx context.Context, caller identity.Identity, vehicleID string) ([]*FuelLog, error)
}

type VehicleReader interface {
	GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

type Service struct {
	repo     Repository
	vehicles VehicleReader
	notifier notification.Notifier
	events   events.Publisher
	policy   identity.Authorizer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	vehicles VehicleReader,
	notifier notification.Notifier,
	publisher events.Publisher,
	policy identity.Authorizer,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		vehicles: vehicles,
		notifier: notifier,
		events:   publisher,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// Create records a pending refill. Only the vehicle's assigned driver may
// log fuel for it.
func (s *Service) Create(ctx context.Context, caller identity.Identity, dto CreateFuelLogDTO) (*FuelLog, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFuel, identity.ActionCreate); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	v, err := s.vehicles.GetByID(ctx, dto.VehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, vehicle.ErrVehicleNotFound
		}
		return nil, internal.NewInternalError("failed to load vehicle", err)
	}
	if !v.IsAssignedTo(caller.UserID) {
		s.logger.Warn("fuel log refused: not the assigned driver",
			"vehicle_id", v.ID,
			"user_id", caller.UserID)
		return nil, ErrNotAssignedDriver
	}

	now := s.now()
	refill := now
	if dto.RefillDate != nil && !dto.RefillDate.IsZero() {
		refill = *dto.RefillDate
	}

	f := &FuelLog{
		ID:         uuid.NewString(),
		VehicleID:  v.ID,
		DriverID:   caller.UserID,
		DriverName: caller.Name,
		KmReading:  *dto.KmReading,
		FuelAmount: *dto.FuelAmount,
		TotalCost:  *dto.TotalCost,
		RefillDate: refill,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Error("failed to create fuel log", "error", err, "user_id", caller.UserID)
		return nil, internal.NewInternalError("failed to create fuel log", err)
	}

	s.logger.Info("fuel log submitted",
		"fuel_log_id", f.ID,
		"vehicle_id", f.VehicleID,
		"user_id", caller.UserID)

	s.notify(ctx, notification.Admins(), fmt.Sprintf("New fuel request from %s.", caller.Name))
	return f, nil
}

// Approve computes km/L against the vehicle's previous approved log inside
// the same transaction that flips the status. The vehicle row is locked
// first, so two approvals for one vehicle never share a previous log.
func (s *Service) Approve(ctx context.Context, caller identity.Identity, id string) (*FuelLog, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFuel, identity.ActionDecide); err != nil {
		return nil, err
	}

	var approved *FuelLog
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		f, err := s.pending(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.LockVehicle(ctx, f.VehicleID); err != nil {
			return err
		}

		prev, err := tx.PreviousApproved(ctx, f.VehicleID, f.ID)
		if err != nil {
			return err
		}
		var previous *report.Reading
		if prev != nil {
			r := prev.Reading()
			previous = &r
		}
		kpl := report.ComputeKmPerLiter(f.Reading(), previous)

		if err := tx.Transition(ctx, f.ID, StatusApproved, kpl); err != nil {
			return err
		}
		f.Status = StatusApproved
		f.KmPerLiter = kpl
		approved = f
		return nil
	})
	if err != nil {
		return nil, s.transitionError(err, id)
	}

	s.logger.Info("fuel log approved",
		"fuel_log_id", approved.ID,
		"vehicle_id", approved.VehicleID,
		"km_per_liter", approved.KmPerLiter,
		"admin_id", caller.UserID)

	s.notify(ctx, notification.ToUser(approved.DriverID), "Your fuel request has been approved.")
	s.publish(ctx, events.NewFuelLogApprovedEvent(approved.ID, approved.VehicleID, approved.DriverID, approved.KmPerLiter))
	return approved, nil
}

func (s *Service) Reject(ctx context.Context, caller identity.Identity, id string) (*FuelLog, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFuel, identity.ActionDecide); err != nil {
		return nil, err
	}

	var rejected *FuelLog
	err := s.repo.Atomically(ctx, func(tx Repository) error {
		f, err := s.pending(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Transition(ctx, f.ID, StatusRejected, nil); err != nil {
			return err
		}
		f.Status = StatusRejected
		rejected = f
		return nil
	})
	if err != nil {
		return nil, s.transitionError(err, id)
	}

	s.logger.Info("fuel log rejected", "fuel_log_id", rejected.ID, "admin_id", caller.UserID)
	s.notify(ctx, notification.ToUser(rejected.DriverID), "Your fuel request has been rejected.")
	return rejected, nil
}

// List shows admins every log and drivers their own.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*FuelLog, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFuel, identity.ActionList); err != nil {
		return nil, err
	}

	driverID := caller.UserID
	if caller.Is(identity.RoleAdmin) {
		driverID = ""
	}

	logs, err := s.repo.List(ctx, driverID)
	if err != nil {
		s.logger.Error("failed to list fuel logs", "error", err)
		return nil, internal.NewInternalError("failed to list fuel logs", err)
	}
	return logs, nil
}

func (s *Service) Consumption(ctx context.Context, caller identity.Identity, vehicleID string) ([]*FuelLog, error) {
	if err := s.policy.Authorize(caller, identity.ResourceFuel, identity.ActionConsumption); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListApprovedByVehicle(ctx, vehicleID)
	if err != nil {
		s.logger.Error("failed to load fuel consumption", "error", err, "vehicle_id", vehicleID)
		return nil, internal.NewInternalError("failed to load fuel consumption", err)
	}
	if len(logs) == 0 {
		return nil, ErrNoApprovedFuelLogs
	}
	return logs, nil
}

func (s *Service) pending(ctx context.Context, tx Repository, id string) (*FuelLog, error) {
	f, err := tx.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.IsPending() {
		s.logger.Warn("fuel log not pending", "fuel_log_id", id, "current_status", f.Status)
		return nil, ErrFuelLogNotPending
	}
	return f, nil
}

func (s *Service) transitionError(err error, id string) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("fuel log transition failed", "error", err, "fuel_log_id", id)
	return internal.NewInternalError("failed to update fuel log", err)
}

func (s *Service) notify(ctx context.Context, target notification.Target, message string) {
	if err := s.notifier.Notify(ctx, target, message, notification.TypeFuel); err != nil {
		s.logger.Error("failed to dispatch fuel notification", "error", err, "message", message)
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
