package trip

import (
	"strings"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/common/validation"
)

type CreateTripDTO struct {
	TripDate    *time.Time `json:"trip_date"`
	Destination string     `json:"destination"`
	Reason      string     `json:"reason"`
}

func (d *CreateTripDTO) Normalize() {
	d.Destination = strings.TrimSpace(d.Destination)
	d.Reason = strings.TrimSpace(d.Reason)
}

func (d CreateTripDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("trip_date", d.TripDate).Required()
	v.Field("destination", d.Destination).Required().MaxLength(255)
	v.Field("reason", d.Reason).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ApproveTripDTO struct {
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
}

func (d ApproveTripDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("vehicle_id", d.VehicleID).Required()
	v.Field("driver_id", d.DriverID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DecisionDTO is the body of PUT /trips/{id}/decision.
type DecisionDTO struct {
	Status    string `json:"status"`
	VehicleID string `json:"vehicle_id,omitempty"`
	DriverID  string `json:"driver_id,omitempty"`
}

func (d DecisionDTO) Validate() error {
	switch Status(d.Status) {
	case StatusApproved, StatusRejected:
		return nil
	}
	return internal.ErrInvalidDecision
}
