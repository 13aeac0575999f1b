package auth

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
)

//go:embed model.conf
var policyModel string

//go:embed policy.csv
var policyRules string

// Policy is the role table every service consults before acting.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
	logger   *slog.Logger
}

var _ identity.Authorizer = (*Policy)(nil)

// NewPolicy builds the enforcer from the embedded model and rules.
func NewPolicy(logger *slog.Logger) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(policyRules))
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	return &Policy{enforcer: enforcer, logger: logger}, nil
}

// MustNewPolicy panics if the embedded policy is broken.
func MustNewPolicy(logger *slog.Logger) *Policy {
	p, err := NewPolicy(logger)
	if err != nil {
		panic(err)
	}
	return p
}

// Authorize fails with an unauthenticated error for an anonymous caller and
// a forbidden error when the caller's role has no matching rule.
func (p *Policy) Authorize(id identity.Identity, resource, action string) error {
	if id.UserID == "" {
		return internal.ErrMissingCredentials
	}

	allowed, err := p.enforcer.Enforce(string(id.Role), resource, action)
	if err != nil {
		return internal.NewInternalError("policy evaluation failed", err)
	}
	if !allowed {
		p.logger.Warn("access denied",
			"user_id", id.UserID,
			"role", id.Role,
			"resource", resource,
			"action", action)
		return internal.ErrRoleNotAllowed
	}
	return nil
}

// Roles lists the roles granted resource/action, in table order.
func (p *Policy) Roles(resource, action string) ([]identity.Role, error) {
	rules, err := p.enforcer.GetFilteredPolicy(1, resource, action)
	if err != nil {
		return nil, err
	}
	roles := make([]identity.Role, 0, len(rules))
	for _, rule := range rules {
		roles = append(roles, identity.Role(rule[0]))
	}
	return roles, nil
}
