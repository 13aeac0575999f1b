package vehicle

import (
	"strings"

	"github.com/frahmantamala/fleet-management/internal/core/common/validation"
)

type RegisterVehicleDTO struct {
	PlateNumber      string  `json:"plate_number"`
	Model            string  `json:"model"`
	Type             string  `json:"type"`
	AssignedDriverID *string `json:"assigned_driver_id,omitempty"`
}

func (d *RegisterVehicleDTO) Normalize() {
	d.PlateNumber = strings.ToUpper(strings.TrimSpace(d.PlateNumber))
	d.Model = strings.TrimSpace(d.Model)
	d.Type = strings.TrimSpace(d.Type)
	if d.AssignedDriverID != nil && strings.TrimSpace(*d.AssignedDriverID) == "" {
		d.AssignedDriverID = nil
	}
}

func (d RegisterVehicleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("plate_number", d.PlateNumber).Required().MaxLength(20)
	v.Field("model", d.Model).Required().MaxLength(100)
	v.Field("type", d.Type).Required().MaxLength(50)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateVehicleDTO changes only the fields that are set. UnassignDriver
// clears the assignment and wins over AssignedDriverID.
type UpdateVehicleDTO struct {
	PlateNumber      *string `json:"plate_number,omitempty"`
	Model            *string `json:"model,omitempty"`
	Type             *string `json:"type,omitempty"`
	AssignedDriverID *string `json:"assigned_driver_id,omitempty"`
	UnassignDriver   bool    `json:"unassign_driver,omitempty"`
	Status           *string `json:"status,omitempty"`
}

func (d *UpdateVehicleDTO) Normalize() {
	if d.PlateNumber != nil {
		p := strings.ToUpper(strings.TrimSpace(*d.PlateNumber))
		d.PlateNumber = &p
	}
	if d.AssignedDriverID != nil && strings.TrimSpace(*d.AssignedDriverID) == "" {
		d.AssignedDriverID = nil
	}
}

func (d UpdateVehicleDTO) Validate() error {
	v := validation.NewValidator()
	if d.PlateNumber != nil {
		v.Field("plate_number", *d.PlateNumber).Required().MaxLength(20)
	}
	if d.Model != nil {
		v.Field("model", *d.Model).Required().MaxLength(100)
	}
	if d.Type != nil {
		v.Field("type", *d.Type).Required().MaxLength(50)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Status != nil && !Status(*d.Status).Valid() {
		return ErrInvalidStatus
	}
	return nil
}
