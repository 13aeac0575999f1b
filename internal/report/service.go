package report

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

type ServiceAPI interface {
	DriverReport(ctx context.Context, caller identity.Identity, driverID string) (*DriverReport, error)
	VehicleReport(ctx context.Context, caller identity.Identity, vehicleID string) (*VehicleReport, error)
}

type Service struct {
	repo   Repository
	cache  *Cache
	policy identity.Authorizer
	logger *slog.Logger
}

// NewService builds the report service. A nil cache disables caching.
func NewService(repo Repository, cache *Cache, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, policy: policy, logger: logger}
}

func (s *Service) DriverReport(ctx context.Context, caller identity.Identity, driverID string) (*DriverReport, error) {
	if err := s.policy.Authorize(caller, identity.ResourceReport, identity.ActionRead); err != nil {
		return nil, err
	}

	subject, err := s.repo.FindDriver(ctx, driverID)
	if err != nil {
		return nil, s.storageError(err, "failed to load driver")
	}

	f, err := s.loadFigures(ctx, "driver:"+driverID, Filter{DriverID: driverID})
	if err != nil {
		return nil, err
	}

	s.logger.Info("driver report generated", "driver_id", driverID, "admin_id", caller.UserID)
	return BuildDriverReport(subject, f.trips, f.maintenance, f.entries), nil
}

func (s *Service) VehicleReport(ctx context.Context, caller identity.Identity, vehicleID string) (*VehicleReport, error) {
	if err := s.policy.Authorize(caller, identity.ResourceReport, identity.ActionRead); err != nil {
		return nil, err
	}

	subject, err := s.repo.FindVehicle(ctx, vehicleID)
	if err != nil {
		return nil, s.storageError(err, "failed to load vehicle")
	}

	f, err := s.loadFigures(ctx, "vehicle:"+vehicleID, Filter{VehicleID: vehicleID})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle report generated", "vehicle_id", vehicleID, "admin_id", caller.UserID)
	return BuildVehicleReport(subject, f.trips, f.maintenance, f.entries), nil
}

// figures are the aggregates behind a report, cached per subject.
type figures struct {
	trips       int64
	maintenance int64
	entries     []FuelEntry
}

func (s *Service) loadFigures(ctx context.Context, key string, filter Filter) (*figures, error) {
	if cached, ok := s.cache.get(key); ok {
		return cached.(*figures), nil
	}

	trips, err := s.repo.CountTrips(ctx, filter)
	if err != nil {
		return nil, s.storageError(err, "failed to count trips")
	}
	maintenance, err := s.repo.CountMaintenance(ctx, filter)
	if err != nil {
		return nil, s.storageError(err, "failed to count maintenance requests")
	}
	entries, err := s.repo.ApprovedFuel(ctx, filter)
	if err != nil {
		return nil, s.storageError(err, "failed to load fuel logs")
	}

	f := &figures{trips: trips, maintenance: maintenance, entries: entries}
	s.cache.add(key, f)
	return f, nil
}

func (s *Service) storageError(err error, message string) error {
	if errors.Is(err, ErrDriverNotFound) || errors.Is(err, ErrVehicleNotFound) {
		return err
	}
	s.logger.Error(message, "error", err)
	return internal.NewInternalError(message, err)
}
