package trip

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	tripDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/trip"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusCompleted is part of the lifecycle but no operation reaches it.
	StatusCompleted Status = "completed"
)

type Trip struct {
	ID          string    `json:"id"`
	RequestedBy string    `json:"requested_by"`
	VehicleID   *string   `json:"vehicle_id"`
	DriverID    *string   `json:"driver_id"`
	Status      Status    `json:"status"`
	TripDate    time.Time `json:"trip_date"`
	Destination string    `json:"destination"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Trip) IsPending() bool {
	return t.Status == StatusPending
}

// Assignment is what an approval writes alongside the new status.
type Assignment struct {
	VehicleID string
	DriverID  string
}

type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id string) (*Trip, error)
	// List returns trips newest first. An empty requester matches all.
	List(ctx context.Context, requestedBy string) ([]*Trip, error)
	// Transition moves a pending trip to status, failing with ErrTripNotPending
	// when another writer got there first.
	Transition(ctx context.Context, id string, status Status, assignment *Assignment) error
	Atomically(ctx context.Context, fn func(tx Repository) error) error
}

var (
	ErrTripNotFound   = internal.NewNotFoundError("Trip not found", internal.ErrCodeTripNotFound)
	ErrTripNotPending = internal.NewInvalidStateError("Trip request has already been processed", internal.ErrCodeTripNotPending)
	ErrInvalidVehicle = internal.NewValidationError("Vehicle does not exist", internal.ErrCodeInvalidVehicle)
	ErrInvalidDriver  = internal.NewValidationError("Driver must be a user with the driver role", internal.ErrCodeInvalidDriver)
)

func ToDataModel(t *Trip) *tripDatamodel.Trip {
	return &tripDatamodel.Trip{
		ID:          t.ID,
		RequestedBy: t.RequestedBy,
		VehicleID:   t.VehicleID,
		DriverID:    t.DriverID,
		Status:      string(t.Status),
		TripDate:    t.TripDate,
		Destination: t.Destination,
		Reason:      t.Reason,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(row *tripDatamodel.Trip) *Trip {
	return &Trip{
		ID:          row.ID,
		RequestedBy: row.RequestedBy,
		VehicleID:   row.VehicleID,
		DriverID:    row.DriverID,
		Status:      Status(row.Status),
		TripDate:    row.TripDate,
		Destination: row.Destination,
		Reason:      row.Reason,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
