package postgres

import (
	"context"
	"errors"
	"time"

	tripDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/trip"
	"github.com/frahmantamala/fleet-management/internal/trip"
	"gorm.io/gorm"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) trip.Repository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, t *trip.Trip) error {
	return r.db.WithContext(ctx).Create(trip.ToDataModel(t)).Error
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	var row tripDatamodel.Trip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trip.ErrTripNotFound
		}
		return nil, err
	}
	return trip.FromDataModel(&row), nil
}

func (r *TripRepository) List(ctx context.Context, requestedBy string) ([]*trip.Trip, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if requestedBy != "" {
		q = q.Where("requested_by = ?", requestedBy)
	}

	var rows []tripDatamodel.Trip
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	trips := make([]*trip.Trip, 0, len(rows))
	for i := range rows {
		trips = append(trips, trip.FromDataModel(&rows[i]))
	}
	return trips, nil
}

// Transition is a conditional write on status = pending.
func (r *TripRepository) Transition(ctx context.Context, id string, status trip.Status, assignment *trip.Assignment) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if assignment != nil {
		updates["vehicle_id"] = assignment.VehicleID
		updates["driver_id"] = assignment.DriverID
	}

	result := r.db.WithContext(ctx).
		Model(&tripDatamodel.Trip{}).
		Where("id = ? AND status = ?", id, string(trip.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trip.ErrTripNotPending
	}
	return nil
}

func (r *TripRepository) Atomically(ctx context.Context, fn func(tx trip.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TripRepository{db: tx})
	})
}
