package vehicle

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	vehicleDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/vehicle"
)

type Status string

const (
	StatusActive        Status = "Active"
	StatusInMaintenance Status = "In Maintenance"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInMaintenance
}

// AssignedDriver holds the driver's name as it was at assignment time.
type AssignedDriver struct {
	DriverID   string `json:"driver_id"`
	DriverName string `json:"driver_name"`
}

type Vehicle struct {
	ID                    string          `json:"id"`
	PlateNumber           string          `json:"plate_number"`
	Model                 string          `json:"model"`
	Type                  string          `json:"type"`
	AssignedDriver        *AssignedDriver `json:"assigned_driver"`
	Status                Status          `json:"status"`
	LastMaintenanceDate   *time.Time      `json:"last_maintenance_date,omitempty"`
	MaintenanceRemindedAt *time.Time      `json:"-"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// IsAssignedTo reports whether driverID is this vehicle's assigned driver.
func (v *Vehicle) IsAssignedTo(driverID string) bool {
	return v.AssignedDriver != nil && driverID != "" && v.AssignedDriver.DriverID == driverID
}

// MaintenanceBaseline is the date overdue checks measure from. A vehicle
// that was never maintained counts from its registration.
func (v *Vehicle) MaintenanceBaseline() time.Time {
	if v.LastMaintenanceDate != nil {
		return *v.LastMaintenanceDate
	}
	return v.CreatedAt
}

type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id string) (*Vehicle, error)
	GetByDriverID(ctx context.Context, driverID string) (*Vehicle, error)
	List(ctx context.Context) ([]*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	SetStatus(ctx context.Context, id string, status Status) error
	StampLastMaintenance(ctx context.Context, id string, at time.Time) error
	ListMaintenanceCandidates(ctx context.Context, cutoff time.Time, dedupe bool) ([]*Vehicle, error)
	StampReminded(ctx context.Context, id string, at time.Time) error
}

var (
	ErrVehicleNotFound       = internal.NewNotFoundError("Vehicle not found", internal.ErrCodeVehicleNotFound)
	ErrDriverAlreadyAssigned = internal.NewConflictError("Driver is already assigned to another vehicle.", internal.ErrCodeDriverAlreadyAssigned)
	ErrPlateNumberTaken      = internal.NewConflictError("Plate number already registered", internal.ErrCodePlateNumberTaken)
	ErrInvalidDriver         = internal.NewValidationError("Assigned driver must be a user with the driver role", internal.ErrCodeInvalidDriver)
	ErrInvalidStatus         = internal.NewValidationError("Invalid vehicle status", internal.ErrCodeInvalidStatus)
)

func ToDataModel(v *Vehicle) *vehicleDatamodel.Vehicle {
	row := &vehicleDatamodel.Vehicle{
		ID:                    v.ID,
		PlateNumber:           v.PlateNumber,
		Model:                 v.Model,
		Type:                  v.Type,
		Status:                string(v.Status),
		LastMaintenanceDate:   v.LastMaintenanceDate,
		MaintenanceRemindedAt: v.MaintenanceRemindedAt,
		CreatedAt:             v.CreatedAt,
		UpdatedAt:             v.UpdatedAt,
	}
	if v.AssignedDriver != nil {
		id, name := v.AssignedDriver.DriverID, v.AssignedDriver.DriverName
		row.AssignedDriverID = &id
		row.AssignedDriverName = &name
	}
	return row
}

func FromDataModel(row *vehicleDatamodel.Vehicle) *Vehicle {
	v := &Vehicle{
		ID:                    row.ID,
		PlateNumber:           row.PlateNumber,
		Model:                 row.Model,
		Type:                  row.Type,
		Status:                Status(row.Status),
		LastMaintenanceDate:   row.LastMaintenanceDate,
		MaintenanceRemindedAt: row.MaintenanceRemindedAt,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
	if row.AssignedDriverID != nil {
		v.AssignedDriver = &AssignedDriver{DriverID: *row.AssignedDriverID}
		if row.AssignedDriverName != nil {
			v.AssignedDriver.DriverName = *row.AssignedDriverName
		}
	}
	return v
}
