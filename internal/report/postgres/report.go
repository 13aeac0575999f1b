package postgres

import (
	"context"
	"errors"

	fuelDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/fuel"
	maintenanceDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/maintenance"
	tripDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/trip"
	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	vehicleDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/vehicle"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/report"
	"gorm.io/gorm"
)

// ReportRepository reads across the workflow tables; it never writes.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) FindDriver(ctx context.Context, id string) (*report.Subject, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, string(identity.RoleDriver)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report.ErrDriverNotFound
		}
		return nil, err
	}
	return &report.Subject{ID: row.ID, Label: row.Name}, nil
}

func (r *ReportRepository) FindVehicle(ctx context.Context, id string) (*report.Subject, error) {
	var row vehicleDatamodel.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report.ErrVehicleNotFound
		}
		return nil, err
	}
	return &report.Subject{ID: row.ID, Label: row.PlateNumber}, nil
}

func (r *ReportRepository) CountTrips(ctx context.Context, f report.Filter) (int64, error) {
	var n int64
	err := scoped(r.db.WithContext(ctx).Model(&tripDatamodel.Trip{}), f).Count(&n).Error
	return n, err
}

func (r *ReportRepository) CountMaintenance(ctx context.Context, f report.Filter) (int64, error) {
	var n int64
	err := scoped(r.db.WithContext(ctx).Model(&maintenanceDatamodel.MaintenanceRequest{}), f).Count(&n).Error
	return n, err
}

func (r *ReportRepository) ApprovedFuel(ctx context.Context, f report.Filter) ([]report.FuelEntry, error) {
	var rows []fuelDatamodel.FuelLog
	err := scoped(r.db.WithContext(ctx), f).
		Where("status = ?", "approved").
		Order("refill_date ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]report.FuelEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, report.FuelEntry{
			RefillDate: row.RefillDate,
			KmReading:  row.KmReading,
			FuelAmount: row.FuelAmount,
			KmPerLiter: row.KmPerLiter,
		})
	}
	return entries, nil
}

func scoped(q *gorm.DB, f report.Filter) *gorm.DB {
	if f.DriverID != "" {
		q = q.Where("driver_id = ?", f.DriverID)
	}
	if f.VehicleID != "" {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	return q
}
