package notification

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	notificationDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

type Type string

const (
	TypeUser        Type = "user"
	TypeFuel        Type = "fuel"
	TypeMaintenance Type = "maintenance"
	TypeTrip        Type = "trip"
	TypeFeedback    Type = "feedback"
)

// Notification is addressed either to one user (RecipientID) or, for a
// role broadcast, to every holder of AudienceRole.
type Notification struct {
	ID           string         `json:"id"`
	RecipientID  *string        `json:"recipient_id,omitempty"`
	AudienceRole *identity.Role `json:"audience_role,omitempty"`
	Message      string         `json:"message"`
	Type         Type           `json:"type"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// VisibleTo reports whether id may read and acknowledge n.
func (n *Notification) VisibleTo(id identity.Identity) bool {
	if n.RecipientID != nil {
		return *n.RecipientID == id.UserID
	}
	return n.AudienceRole != nil && *n.AudienceRole == id.Role
}

type TargetKind int

const (
	TargetUser TargetKind = iota
	TargetAdmins
)

// Target names who a notification is for. Admins() is resolved through the
// dispatcher's admin policy.
type Target struct {
	Kind   TargetKind
	UserID string
}

func ToUser(userID string) Target {
	return Target{Kind: TargetUser, UserID: userID}
}

func Admins() Target {
	return Target{Kind: TargetAdmins}
}

// Notifier is what workflows depend on to emit notifications.
type Notifier interface {
	Notify(ctx context.Context, target Target, message string, typ Type) error
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListForRecipient(ctx context.Context, userID string, role identity.Role) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Directory resolves admin recipients, oldest account first.
type Directory interface {
	AdminIDs(ctx context.Context) ([]string, error)
}

var (
	ErrNotificationNotFound = internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
	ErrNotRecipient         = internal.NewForbiddenError("Not authorized to modify this notification", internal.ErrCodeNotRecipient)
)

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	var audience *string
	if n.AudienceRole != nil {
		r := string(*n.AudienceRole)
		audience = &r
	}
	return &notificationDatamodel.Notification{
		ID:           n.ID,
		RecipientID:  n.RecipientID,
		AudienceRole: audience,
		Message:      n.Message,
		Type:         string(n.Type),
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	var audience *identity.Role
	if n.AudienceRole != nil {
		r := identity.Role(*n.AudienceRole)
		audience = &r
	}
	return &Notification{
		ID:           n.ID,
		RecipientID:  n.RecipientID,
		AudienceRole: audience,
		Message:      n.Message,
		Type:         Type(n.Type),
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}
