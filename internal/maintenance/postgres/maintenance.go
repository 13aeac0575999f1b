package postgres

import (
	"context"
	"errors"
	"time"

	maintenanceDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/maintenance"
	"github.com/frahmantamala/fleet-management/internal/maintenance"
	vehiclePostgres "github.com/frahmantamala/fleet-management/internal/vehicle/postgres"
	"gorm.io/gorm"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) maintenance.Repository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *maintenance.Request) error {
	return r.db.WithContext(ctx).Create(maintenance.ToDataModel(m)).Error
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id string) (*maintenance.Request, error) {
	var row maintenanceDatamodel.MaintenanceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maintenance.ErrMaintenanceNotFound
		}
		return nil, err
	}
	return maintenance.FromDataModel(&row), nil
}

func (r *MaintenanceRepository) List(ctx context.Context, driverID string) ([]*maintenance.Request, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}

	var rows []maintenanceDatamodel.MaintenanceRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*maintenance.Request, 0, len(rows))
	for i := range rows {
		out = append(out, maintenance.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *MaintenanceRepository) Transition(ctx context.Context, id string, from, to maintenance.Status, adminResponse *string) error {
	result := r.db.WithContext(ctx).
		Model(&maintenanceDatamodel.MaintenanceRequest{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":         string(to),
			"admin_response": adminResponse,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return maintenance.StaleStatusError(from)
	}
	return nil
}

func (r *MaintenanceRepository) Complete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&maintenanceDatamodel.MaintenanceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(maintenance.StatusCompleted),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return maintenance.ErrMaintenanceNotFound
	}
	return nil
}

// Vehicles shares this repository's handle, so inside Atomically the
// vehicle writes join the same transaction.
func (r *MaintenanceRepository) Vehicles() maintenance.VehicleStore {
	return vehiclePostgres.NewVehicleRepository(r.db)
}

func (r *MaintenanceRepository) Atomically(ctx context.Context, fn func(tx maintenance.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&MaintenanceRepository{db: tx})
	})
}
