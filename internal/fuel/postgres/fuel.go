package postgres

import (
	"context"
	"errors"
	"time"

	fuelDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/fuel"
	vehicleDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/vehicle"
	"github.com/frahmantamala/fleet-management/internal/fuel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FuelLogRepository struct {
	db *gorm.DB
}

func NewFuelLogRepository(db *gorm.DB) fuel.Repository {
	return &FuelLogRepository{db: db}
}

func (r *FuelLogRepository) Create(ctx context.Context, f *fuel.FuelLog) error {
	return r.db.WithContext(ctx).Create(fuel.ToDataModel(f)).Error
}

func (r *FuelLogRepository) GetByID(ctx context.Context, id string) (*fuel.FuelLog, error) {
	var row fuelDatamodel.FuelLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fuel.ErrFuelLogNotFound
		}
		return nil, err
	}
	return fuel.FromDataModel(&row), nil
}

func (r *FuelLogRepository) List(ctx context.Context, driverID string) ([]*fuel.FuelLog, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	return r.find(q)
}

func (r *FuelLogRepository) ListApprovedByVehicle(ctx context.Context, vehicleID string) ([]*fuel.FuelLog, error) {
	q := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, string(fuel.StatusApproved)).
		Order("refill_date DESC")
	return r.find(q)
}

func (r *FuelLogRepository) PreviousApproved(ctx context.Context, vehicleID, excludeID string) (*fuel.FuelLog, error) {
	var row fuelDatamodel.FuelLog
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ? AND id <> ?", vehicleID, string(fuel.StatusApproved), excludeID).
		Order("refill_date DESC").
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fuel.FromDataModel(&row), nil
}

// Transition is a conditional write on status = pending. km_per_liter is
// written once here and never recomputed.
func (r *FuelLogRepository) Transition(ctx context.Context, id string, status fuel.Status, kmPerLiter *float64) error {
	result := r.db.WithContext(ctx).
		Model(&fuelDatamodel.FuelLog{}).
		Where("id = ? AND status = ?", id, string(fuel.StatusPending)).
		Updates(map[string]interface{}{
			"status":       string(status),
			"km_per_liter": kmPerLiter,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fuel.ErrFuelLogNotPending
	}
	return nil
}

// LockVehicle is SELECT ... FOR UPDATE on the vehicle row. A missing vehicle
// locks nothing. SQLite has no row locks and skips the clause.
func (r *FuelLogRepository) LockVehicle(ctx context.Context, vehicleID string) error {
	var ids []string
	return r.db.WithContext(ctx).
		Model(&vehicleDatamodel.Vehicle{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", vehicleID).
		Pluck("id", &ids).Error
}

func (r *FuelLogRepository) Atomically(ctx context.Context, fn func(tx fuel.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FuelLogRepository{db: tx})
	})
}

func (r *FuelLogRepository) find(q *gorm.DB) ([]*fuel.FuelLog, error) {
	var rows []fuelDatamodel.FuelLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]*fuel.FuelLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, fuel.FromDataModel(&rows[i]))
	}
	return logs, nil
}
