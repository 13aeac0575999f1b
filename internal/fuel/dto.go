package fuel

import (
	"strings"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/common/validation"
)

// CreateFuelLogDTO leaves the numeric values unchecked beyond presence.
type CreateFuelLogDTO struct {
	VehicleID  string     `json:"vehicle_id"`
	KmReading  *float64   `json:"km_reading"`
	FuelAmount *float64   `json:"fuel_amount"`
	TotalCost  *float64   `json:"total_cost"`
	RefillDate *time.Time `json:"refill_date,omitempty"`
}

func (d *CreateFuelLogDTO) Normalize() {
	d.VehicleID = strings.TrimSpace(d.VehicleID)
}

func (d CreateFuelLogDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("vehicle_id", d.VehicleID).Required()
	v.Field("km_reading", d.KmReading).Required()
	v.Field("fuel_amount", d.FuelAmount).Required()
	v.Field("total_cost", d.TotalCost).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DecisionDTO struct {
	Status string `json:"status"`
}

func (d DecisionDTO) Validate() error {
	switch Status(d.Status) {
	case StatusApproved, StatusRejected:
		return nil
	}
	return internal.ErrInvalidDecision
}
