package fuel

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	fuelDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/fuel"
	"github.com/frahmantamala/fleet-management/internal/report"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type FuelLog struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicle_id"`
	DriverID   string    `json:"driver_id"`
	DriverName string    `json:"driver_name"`
	KmReading  float64   `json:"km_reading"`
	FuelAmount float64   `json:"fuel_amount"`
	TotalCost  float64   `json:"total_cost"`
	RefillDate time.Time `json:"refill_date"`
	Status     Status    `json:"status"`
	KmPerLiter *float64  `json:"km_per_liter"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (f *FuelLog) IsPending() bool {
	return f.Status == StatusPending
}

func (f *FuelLog) Reading() report.Reading {
	return report.Reading{KmReading: f.KmReading, FuelAmount: f.FuelAmount}
}

type Repository interface {
	Create(ctx context.Context, f *FuelLog) error
	GetByID(ctx context.Context, id string) (*FuelLog, error)
	// List returns logs newest first. An empty driver matches all.
	List(ctx context.Context, driverID string) ([]*FuelLog, error)
	// ListApprovedByVehicle returns approved logs, latest refill first.
	ListApprovedByVehicle(ctx context.Context, vehicleID string) ([]*FuelLog, error)
	// PreviousApproved returns the latest approved log of the vehicle other
	// than excludeID, or nil when there is none.
	PreviousApproved(ctx context.Context, vehicleID, excludeID string) (*FuelLog, error)
	Transition(ctx context.Context, id string, status Status, kmPerLiter *float64) error
	// LockVehicle holds the vehicle's row until the enclosing transaction
	// ends, so approvals of its logs see each other's results.
	LockVehicle(ctx context.Context, vehicleID string) error
	Atomically(ctx context.Context, fn func(tx Repository) error) error
}

var (
	ErrFuelLogNotFound    = internal.NewNotFoundError("Fuel request not found", internal.ErrCodeFuelLogNotFound)
	ErrFuelLogNotPending  = internal.NewInvalidStateError("Fuel request has already been processed", internal.ErrCodeFuelLogNotPending)
	ErrNotAssignedDriver  = internal.NewForbiddenError("You are not assigned to this vehicle", internal.ErrCodeNotAssignedDriver)
	ErrNoApprovedFuelLogs = internal.NewNotFoundError("No fuel logs found for this vehicle.", internal.ErrCodeNoApprovedFuelLogs)
)

func ToDataModel(f *FuelLog) *fuelDatamodel.FuelLog {
	return &fuelDatamodel.FuelLog{
		ID:         f.ID,
		VehicleID:  f.VehicleID,
		DriverID:   f.DriverID,
		DriverName: f.DriverName,
		KmReading:  f.KmReading,
		FuelAmount: f.FuelAmount,
		TotalCost:  f.TotalCost,
		RefillDate: f.RefillDate,
		Status:     string(f.Status),
		KmPerLiter: f.KmPerLiter,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func FromDataModel(row *fuelDatamodel.FuelLog) *FuelLog {
	return &FuelLog{
		ID:         row.ID,
		VehicleID:  row.VehicleID,
		DriverID:   row.DriverID,
		DriverName: row.DriverName,
		KmReading:  row.KmReading,
		FuelAmount: row.FuelAmount,
		TotalCost:  row.TotalCost,
		RefillDate: row.RefillDate,
		Status:     Status(row.Status),
		KmPerLiter: row.KmPerLiter,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
