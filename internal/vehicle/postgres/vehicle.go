package postgres

import (
	"context"
	"errors"
	"time"

	vehicleDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/vehicle"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"gorm.io/gorm"
)

// VehicleRepository implements vehicle.Repository using GORM. Workflow
// repositories build one over their transaction handle.
type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

var _ vehicle.Repository = (*VehicleRepository)(nil)

func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	err := r.db.WithContext(ctx).Create(vehicle.ToDataModel(v)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.conflict(ctx, v)
	}
	return err
}

func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *VehicleRepository) GetByDriverID(ctx context.Context, driverID string) (*vehicle.Vehicle, error) {
	return r.first(ctx, "assigned_driver_id = ?", driverID)
}

func (r *VehicleRepository) List(ctx context.Context) ([]*vehicle.Vehicle, error) {
	var rows []vehicleDatamodel.Vehicle
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Update writes every mutable column, so a cleared assignment is stored as NULL.
func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	v.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&vehicleDatamodel.Vehicle{}).
		Where("id = ?", v.ID).
		Select("plate_number", "model", "type", "assigned_driver_id", "assigned_driver_name",
			"status", "last_maintenance_date", "updated_at").
		Updates(vehicle.ToDataModel(v))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return r.conflict(ctx, v)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&vehicleDatamodel.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&vehicleDatamodel.Vehicle{}).Count(&n).Error
	return n, err
}

func (r *VehicleRepository) SetStatus(ctx context.Context, id string, status vehicle.Status) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"status": string(status)})
}

func (r *VehicleRepository) StampLastMaintenance(ctx context.Context, id string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"last_maintenance_date": at})
}

func (r *VehicleRepository) StampReminded(ctx context.Context, id string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"maintenance_reminded_at": at})
}

// ListMaintenanceCandidates returns assigned vehicles whose last maintenance
// (or registration, when never maintained) is at or before cutoff. With
// dedupe, vehicles reminded after cutoff are skipped.
func (r *VehicleRepository) ListMaintenanceCandidates(ctx context.Context, cutoff time.Time, dedupe bool) ([]*vehicle.Vehicle, error) {
	q := r.db.WithContext(ctx).
		Where("assigned_driver_id IS NOT NULL").
		Where("COALESCE(last_maintenance_date, created_at) <= ?", cutoff)
	if dedupe {
		q = q.Where("maintenance_reminded_at IS NULL OR maintenance_reminded_at <= ?", cutoff)
	}

	var rows []vehicleDatamodel.Vehicle
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *VehicleRepository) first(ctx context.Context, query string, args ...interface{}) (*vehicle.Vehicle, error) {
	var row vehicleDatamodel.Vehicle
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vehicle.ErrVehicleNotFound
		}
		return nil, err
	}
	return vehicle.FromDataModel(&row), nil
}

func (r *VehicleRepository) updateColumns(ctx context.Context, id string, cols map[string]interface{}) error {
	cols["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&vehicleDatamodel.Vehicle{}).
		Where("id = ?", id).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return vehicle.ErrVehicleNotFound
	}
	return nil
}

// conflict tells a plate clash apart from a driver clash after a unique
// index rejected the write.
func (r *VehicleRepository) conflict(ctx context.Context, v *vehicle.Vehicle) error {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&vehicleDatamodel.Vehicle{}).
		Where("plate_number = ? AND id <> ?", v.PlateNumber, v.ID).
		Count(&n).Error
	if err == nil && n > 0 {
		return vehicle.ErrPlateNumberTaken
	}
	return vehicle.ErrDriverAlreadyAssigned
}

func fromRows(rows []vehicleDatamodel.Vehicle) []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, 0, len(rows))
	for i := range rows {
		out = append(out, vehicle.FromDataModel(&rows[i]))
	}
	return out
}
