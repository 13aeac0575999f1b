package feedback

import (
	"strings"

	"github.com/frahmantamala/fleet-management/internal/core/common/validation"
)

type SubmitFeedbackDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (d *SubmitFeedbackDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Message = strings.TrimSpace(d.Message)
}

func (d SubmitFeedbackDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("message", d.Message).Required().MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RespondDTO struct {
	Response string `json:"response"`
}

func (d RespondDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("response", strings.TrimSpace(d.Response)).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
