package dashboard

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

type ServiceAPI interface {
	Overview(ctx context.Context, caller identity.Identity) (*Dashboard, error)
}

type Service struct {
	repo   Repository
	policy identity.Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, policy identity.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) Overview(ctx context.Context, caller identity.Identity) (*Dashboard, error) {
	if err := s.policy.Authorize(caller, identity.ResourceDashboard, identity.ActionRead); err != nil {
		return nil, err
	}

	var (
		d   Dashboard
		err error
	)
	if d.UserDistribution, err = s.repo.UserDistribution(ctx); err != nil {
		return nil, s.queryError(err, "user_distribution")
	}
	if d.VehicleUsage, err = s.repo.VehicleUsage(ctx); err != nil {
		return nil, s.queryError(err, "vehicle_usage")
	}
	if d.FuelUsage, err = s.repo.FuelUsage(ctx); err != nil {
		return nil, s.queryError(err, "fuel_usage")
	}
	if d.MaintenanceTrend, err = s.repo.MaintenanceTrend(ctx); err != nil {
		return nil, s.queryError(err, "maintenance_trend")
	}
	return &d, nil
}

func (s *Service) queryError(err error, section string) error {
	s.logger.Error("dashboard query failed", "section", section, "error", err)
	return internal.NewInternalError("failed to load dashboard", err)
}
