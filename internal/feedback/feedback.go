package feedback

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	feedbackDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/feedback"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusResponded Status = "responded"
)

type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id string) (*Feedback, error)
	// List returns feedback newest first.
	List(ctx context.Context) ([]*Feedback, error)
	Respond(ctx context.Context, id, response string) error
}

var ErrFeedbackNotFound = internal.NewNotFoundError("Feedback not found", internal.ErrCodeFeedbackNotFound)

func ToDataModel(f *Feedback) *feedbackDatamodel.Feedback {
	return &feedbackDatamodel.Feedback{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Status:    string(f.Status),
		Response:  f.Response,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func FromDataModel(f *feedbackDatamodel.Feedback) *Feedback {
	return &Feedback{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Status:    Status(f.Status),
		Response:  f.Response,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
