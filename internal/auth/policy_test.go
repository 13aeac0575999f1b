package auth

import (
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	var policy *Policy

	caller := func(role identity.Role) identity.Identity {
		return identity.Identity{UserID: "u-" + string(role), Role: role}
	}

	BeforeEach(func() {
		var err error
		policy, err = NewPolicy(slog.Default())
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("role table",
		func(resource, action string, allowed []identity.Role) {
			for _, role := range identity.AllRoles {
				err := policy.Authorize(caller(role), resource, action)
				if containsRole(allowed, role) {
					Expect(err).NotTo(HaveOccurred(), "%s should be allowed %s:%s", role, resource, action)
				} else {
					Expect(err).To(MatchError(internal.ErrRoleNotAllowed), "%s should be denied %s:%s", role, resource, action)
				}
			}
		},
		Entry("vehicle read", identity.ResourceVehicle, identity.ActionRead, identity.AllRoles),
		Entry("vehicle write", identity.ResourceVehicle, identity.ActionWrite, []identity.Role{identity.RoleAdmin}),
		Entry("trip create", identity.ResourceTrip, identity.ActionCreate, []identity.Role{identity.RoleDepartmentHead}),
		Entry("trip list", identity.ResourceTrip, identity.ActionList, []identity.Role{identity.RoleAdmin, identity.RoleDepartmentHead}),
		Entry("trip decide", identity.ResourceTrip, identity.ActionDecide, []identity.Role{identity.RoleAdmin}),
		Entry("fuel create", identity.ResourceFuel, identity.ActionCreate, []identity.Role{identity.RoleDriver}),
		Entry("fuel list", identity.ResourceFuel, identity.ActionList, []identity.Role{identity.RoleAdmin, identity.RoleDriver}),
		Entry("fuel decide", identity.ResourceFuel, identity.ActionDecide, []identity.Role{identity.RoleAdmin}),
		Entry("fuel consumption", identity.ResourceFuel, identity.ActionConsumption, []identity.Role{identity.RoleAdmin}),
		Entry("maintenance create", identity.ResourceMaintenance, identity.ActionCreate, []identity.Role{identity.RoleDriver}),
		Entry("maintenance list", identity.ResourceMaintenance, identity.ActionList, []identity.Role{identity.RoleAdmin, identity.RoleDriver}),
		Entry("maintenance decide", identity.ResourceMaintenance, identity.ActionDecide, []identity.Role{identity.RoleAdmin}),
		Entry("maintenance report fixed", identity.ResourceMaintenance, identity.ActionReportFixed, []identity.Role{identity.RoleDriver}),
		Entry("maintenance complete", identity.ResourceMaintenance, identity.ActionComplete, []identity.Role{identity.RoleAdmin}),
		Entry("reports", identity.ResourceReport, identity.ActionRead, []identity.Role{identity.RoleAdmin}),
		Entry("dashboard", identity.ResourceDashboard, identity.ActionRead, []identity.Role{identity.RoleAdmin}),
		Entry("user list", identity.ResourceUser, identity.ActionList, []identity.Role{identity.RoleAdmin}),
		Entry("user assign role", identity.ResourceUser, identity.ActionAssignRole, []identity.Role{identity.RoleAdmin}),
		Entry("feedback list", identity.ResourceFeedback, identity.ActionList, []identity.Role{identity.RoleAdmin}),
		Entry("feedback respond", identity.ResourceFeedback, identity.ActionRespond, []identity.Role{identity.RoleAdmin}),
		Entry("notifications", identity.ResourceNotification, identity.ActionRead, identity.AllRoles),
	)

	It("treats an anonymous caller as unauthenticated", func() {
		err := policy.Authorize(identity.Identity{}, identity.ResourceVehicle, identity.ActionRead)
		Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeUnauthorized))
	})

	It("denies unknown roles", func() {
		err := policy.Authorize(identity.Identity{UserID: "x", Role: "owner"}, identity.ResourceVehicle, identity.ActionRead)
		Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
	})

	It("lists the roles granted an action", func() {
		roles, err := policy.Roles(identity.ResourceTrip, identity.ActionList)
		Expect(err).NotTo(HaveOccurred())
		Expect(roles).To(ConsistOf(identity.RoleAdmin, identity.RoleDepartmentHead))
	})

	It("loads every rule of the embedded policy", func() {
		rules, err := policy.enforcer.GetPolicy()
		Expect(err).NotTo(HaveOccurred())
		Expect(rules).To(HaveLen(34))
		Expect(rules).To(ContainElement([]string{"driver", "maintenance", "report_fixed"}))
	})
})

func containsRole(roles []identity.Role, role identity.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
