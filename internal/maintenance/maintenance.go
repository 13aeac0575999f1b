package maintenance

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	maintenanceDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/maintenance"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
)

type RequestType string

const (
	TypeScheduled  RequestType = "scheduled"
	TypeAccidental RequestType = "accidental"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

type Request struct {
	ID               string      `json:"id"`
	VehicleID        string      `json:"vehicle_id"`
	DriverID         string      `json:"driver_id"`
	RequestType      RequestType `json:"request_type"`
	IssueDescription string      `json:"issue_description"`
	Status           Status      `json:"status"`
	AdminResponse    *string     `json:"admin_response"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// VehicleStore is the slice of the vehicle registry a maintenance
// transition writes to. It is bound to the same transaction as the request.
type VehicleStore interface {
	GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
	SetStatus(ctx context.Context, id string, status vehicle.Status) error
	StampLastMaintenance(ctx context.Context, id string, at time.Time) error
}

type Repository interface {
	Create(ctx context.Context, m *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// List returns requests newest first. An empty driver matches all.
	List(ctx context.Context, driverID string) ([]*Request, error)
	// Transition moves a request from one status to another with a
	// conditional write. A lost race yields the sentinel for from.
	Transition(ctx context.Context, id string, from, to Status, adminResponse *string) error
	// Complete sets status completed whatever the current status is.
	Complete(ctx context.Context, id string) error
	Vehicles() VehicleStore
	Atomically(ctx context.Context, fn func(tx Repository) error) error
}

var (
	ErrMaintenanceNotFound    = internal.NewNotFoundError("Maintenance request not found", internal.ErrCodeMaintenanceNotFound)
	ErrMaintenanceNotPending  = internal.NewInvalidStateError("Maintenance request has already been processed", internal.ErrCodeMaintenanceNotPending)
	ErrMaintenanceNotApproved = internal.NewInvalidStateError("Maintenance request is not active", internal.ErrCodeMaintenanceNotActive)
	ErrNotAssignedDriver      = internal.NewForbiddenError("You are not assigned to this vehicle", internal.ErrCodeNotAssignedDriver)
)

// StaleStatusError returns the sentinel reported when a request is no
// longer in the from status.
func StaleStatusError(from Status) error {
	if from == StatusApproved {
		return ErrMaintenanceNotApproved
	}
	return ErrMaintenanceNotPending
}

func ToDataModel(m *Request) *maintenanceDatamodel.MaintenanceRequest {
	return &maintenanceDatamodel.MaintenanceRequest{
		ID:               m.ID,
		VehicleID:        m.VehicleID,
		DriverID:         m.DriverID,
		RequestType:      string(m.RequestType),
		IssueDescription: m.IssueDescription,
		Status:           string(m.Status),
		AdminResponse:    m.AdminResponse,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func FromDataModel(m *maintenanceDatamodel.MaintenanceRequest) *Request {
	return &Request{
		ID:               m.ID,
		VehicleID:        m.VehicleID,
		DriverID:         m.DriverID,
		RequestType:      RequestType(m.RequestType),
		IssueDescription: m.IssueDescription,
		Status:           Status(m.Status),
		AdminResponse:    m.AdminResponse,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
