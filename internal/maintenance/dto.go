package maintenance

import (
	"strings"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/common/validation"
)

type CreateRequestDTO struct {
	VehicleID        string `json:"vehicle_id"`
	RequestType      string `json:"request_type"`
	IssueDescription string `json:"issue_description"`
}

func (d *CreateRequestDTO) Normalize() {
	d.VehicleID = strings.TrimSpace(d.VehicleID)
	d.RequestType = strings.ToLower(strings.TrimSpace(d.RequestType))
	d.IssueDescription = strings.TrimSpace(d.IssueDescription)
}

func (d CreateRequestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("vehicle_id", d.VehicleID).Required()
	v.Field("request_type", d.RequestType).Required().OneOf(string(TypeScheduled), string(TypeAccidental))
	v.Field("issue_description", d.IssueDescription).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DecisionDTO is the body of PUT /maintenance/{id}/decision.
type DecisionDTO struct {
	Status        string  `json:"status"`
	AdminResponse *string `json:"admin_response,omitempty"`
}

func (d DecisionDTO) Validate() error {
	switch Status(d.Status) {
	case StatusApproved, StatusRejected:
		return nil
	}
	return internal.ErrInvalidDecision
}
