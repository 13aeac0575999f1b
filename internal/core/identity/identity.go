package identity

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
)

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDriver         Role = "driver"
	RoleDepartmentHead Role = "department_head"
	RolePublicUser     Role = "public_user"
)

var AllRoles = []Role{RoleAdmin, RoleDriver, RoleDepartmentHead, RolePublicUser}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Identity is the authenticated caller every service operation receives.
type Identity struct {
	UserID string
	Role   Role
	Name   string
	Email  string
}

func (i Identity) Is(role Role) bool {
	return i.Role == role
}

// Resources and actions understood by the role policy.
const (
	ResourceVehicle      = "vehicle"
	ResourceTrip         = "trip"
	ResourceFuel         = "fuel"
	ResourceMaintenance  = "maintenance"
	ResourceReport       = "report"
	ResourceDashboard    = "dashboard"
	ResourceUser         = "user"
	ResourceFeedback     = "feedback"
	ResourceNotification = "notification"

	ActionRead        = "read"
	ActionWrite       = "write"
	ActionCreate      = "create"
	ActionList        = "list"
	ActionDecide      = "decide"
	ActionConsumption = "consumption"
	ActionReportFixed = "report_fixed"
	ActionComplete    = "complete"
	ActionAssignRole  = "assign_role"
	ActionRespond     = "respond"
)

// Authorizer decides whether an identity may perform action on resource.
type Authorizer interface {
	Authorize(id Identity, resource, action string) error
}

// RequireRole fails with a forbidden error unless id holds one of roles.
func RequireRole(id Identity, roles ...Role) error {
	if id.UserID == "" {
		return internal.ErrMissingCredentials
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	slog.Warn("role check failed", "user_id", id.UserID, "role", id.Role, "allowed", roles)
	return internal.ErrRoleNotAllowed
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
