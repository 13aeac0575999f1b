package vehicle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/user"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	Register(ctx context.Context, caller identity.Identity, dto RegisterVehicleDTO) (*Vehicle, error)
	Update(ctx context.Context, caller identity.Identity, id string, dto UpdateVehicleDTO) (*Vehicle, error)
	Delete(ctx context.Context, caller identity.Identity, id string) error
	Get(ctx context.Context, caller identity.Identity, id string) (*Vehicle, error)
	List(ctx context.Context, caller identity.Identity) ([]*Vehicle, error)
}

type Service struct {
	repo   Repository
	users  user.Directory
	policy identity.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, users user.Directory, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		policy: policy,
		logger: logger,
	}
}

func (s *Service) Register(ctx context.Context, caller identity.Identity, dto RegisterVehicleDTO) (*Vehicle, error) {
	if err := s.policy.Authorize(caller, identity.ResourceVehicle, identity.ActionWrite); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &Vehicle{
		ID:          uuid.NewString(),
		PlateNumber: dto.PlateNumber,
		Model:       dto.Model,
		Type:        dto.Type,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if dto.AssignedDriverID != nil {
		assigned, err := s.resolveDriver(ctx, *dto.AssignedDriverID, v.ID)
		if err != nil {
			return nil, err
		}
		v.AssignedDriver = assigned
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, s.storageError("failed to register vehicle", err)
	}

	s.logger.Info("vehicle registered",
		"vehicle_id", v.ID,
		"plate_number", v.PlateNumber,
		"admin_id", caller.UserID)
	return v, nil
}

func (s *Service) Update(ctx context.Context, caller identity.Identity, id string, dto UpdateVehicleDTO) (*Vehicle, error) {
	if err := s.policy.Authorize(caller, identity.ResourceVehicle, identity.ActionWrite); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	v, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.PlateNumber != nil {
		v.PlateNumber = *dto.PlateNumber
	}
	if dto.Model != nil {
		v.Model = *dto.Model
	}
	if dto.Type != nil {
		v.Type = *dto.Type
	}
	if dto.Status != nil {
		v.Status = Status(*dto.Status)
	}

	switch {
	case dto.UnassignDriver:
		v.AssignedDriver = nil
	case dto.AssignedDriverID != nil && !v.IsAssignedTo(*dto.AssignedDriverID):
		assigned, err := s.resolveDriver(ctx, *dto.AssignedDriverID, v.ID)
		if err != nil {
			return nil, err
		}
		v.AssignedDriver = assigned
	}

	v.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, s.storageError("failed to update vehicle", err)
	}

	s.logger.Info("vehicle updated", "vehicle_id", v.ID, "admin_id", caller.UserID)
	return v, nil
}

func (s *Service) Delete(ctx context.Context, caller identity.Identity, id string) error {
	if err := s.policy.Authorize(caller, identity.ResourceVehicle, identity.ActionWrite); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storageError("failed to delete vehicle", err)
	}

	s.logger.Info("vehicle deleted", "vehicle_id", id, "admin_id", caller.UserID)
	return nil
}

func (s *Service) Get(ctx context.Context, caller identity.Identity, id string) (*Vehicle, error) {
	if err := s.policy.Authorize(caller, identity.ResourceVehicle, identity.ActionRead); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) List(ctx context.Context, caller identity.Identity) ([]*Vehicle, error) {
	if err := s.policy.Authorize(caller, identity.ResourceVehicle, identity.ActionRead); err != nil {
		return nil, err
	}

	vehicles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list vehicles", "error", err)
		return nil, internal.NewInternalError("failed to list vehicles", err)
	}
	return vehicles, nil
}

// resolveDriver checks that driverID names a driver who is free or already
// on vehicleID, and snapshots their name.
func (s *Service) resolveDriver(ctx context.Context, driverID, vehicleID string) (*AssignedDriver, error) {
	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidDriver
		}
		return nil, internal.NewInternalError("failed to load driver", err)
	}
	if !driver.IsDriver() {
		return nil, ErrInvalidDriver
	}

	current, err := s.repo.GetByDriverID(ctx, driverID)
	switch {
	case err == nil && current.ID != vehicleID:
		s.logger.Warn("driver already assigned",
			"driver_id", driverID,
			"vehicle_id", current.ID)
		return nil, ErrDriverAlreadyAssigned
	case err != nil && !errors.Is(err, ErrVehicleNotFound):
		return nil, internal.NewInternalError("failed to check driver assignment", err)
	}

	return &AssignedDriver{DriverID: driver.ID, DriverName: driver.Name}, nil
}

func (s *Service) get(ctx context.Context, id string) (*Vehicle, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, internal.NewInternalError("failed to load vehicle", err)
	}
	return v, nil
}

func (s *Service) storageError(msg string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}
