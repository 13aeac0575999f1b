package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticDirectory struct {
	ids []string
	err error
}

func (d staticDirectory) AdminIDs(ctx context.Context) ([]string, error) {
	return d.ids, d.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	seen []string
}

func (p *recordingPublisher) Publish(ctx context.Context, n *Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, n.ID)
	return nil
}

var _ = Describe("Dispatcher", func() {
	var (
		repo      *mockRepository
		directory staticDirectory
		cfg       DispatcherConfig
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = newMockRepository()
		directory = staticDirectory{ids: []string{"admin-oldest", "admin-newer"}}
		cfg = DispatcherConfig{Workers: 2, QueueSize: 8, MaxRetries: 3, RetryBase: time.Millisecond}
		ctx = context.Background()
	})

	dispatch := func(target Target) []*Notification {
		d := NewDispatcher(cfg, repo, directory, slog.Default())
		Expect(d.Notify(ctx, target, "hello", TypeTrip)).To(Succeed())
		d.Shutdown()
		return repo.all()
	}

	It("addresses a single user", func() {
		items := dispatch(ToUser("driver-1"))
		Expect(items).To(HaveLen(1))
		Expect(*items[0].RecipientID).To(Equal("driver-1"))
		Expect(items[0].IsRead).To(BeFalse())
		Expect(items[0].Type).To(Equal(TypeTrip))
	})

	It("sends admin notifications to the first admin under the single-admin policy", func() {
		cfg.AdminPolicy = internal.AdminPolicySingleAdmin
		items := dispatch(Admins())
		Expect(items).To(HaveLen(1))
		Expect(*items[0].RecipientID).To(Equal("admin-oldest"))
	})

	It("fans out to every admin under the all-admins policy", func() {
		cfg.AdminPolicy = internal.AdminPolicyAllAdmins
		items := dispatch(Admins())
		Expect(items).To(HaveLen(2))
	})

	It("writes one role-addressed record under the role-broadcast policy", func() {
		cfg.AdminPolicy = internal.AdminPolicyRoleBroadcast
		items := dispatch(Admins())
		Expect(items).To(HaveLen(1))
		Expect(items[0].RecipientID).To(BeNil())
		Expect(*items[0].AudienceRole).To(Equal(identity.RoleAdmin))
	})

	It("writes nothing when there is no admin", func() {
		directory = staticDirectory{}
		Expect(dispatch(Admins())).To(BeEmpty())
	})

	It("fails when admins cannot be resolved", func() {
		directory = staticDirectory{err: errors.New("db down")}
		d := NewDispatcher(cfg, repo, directory, slog.Default())
		defer d.Shutdown()
		Expect(d.Notify(ctx, Admins(), "hello", TypeUser)).To(MatchError(ContainSubstring("db down")))
	})

	It("retries transient write failures", func() {
		repo.failTimes = 2
		Expect(dispatch(ToUser("driver-1"))).To(HaveLen(1))
	})

	It("gives up after the retry budget without panicking", func() {
		repo.createErr = errors.New("disk full")
		Expect(dispatch(ToUser("driver-1"))).To(BeEmpty())
	})

	It("delivers inline once shut down", func() {
		d := NewDispatcher(cfg, repo, directory, slog.Default())
		d.Shutdown()
		Expect(d.Notify(ctx, ToUser("driver-2"), "late", TypeFuel)).To(Succeed())
		Expect(repo.all()).To(HaveLen(1))
	})

	It("pushes stored notifications to the publisher", func() {
		publisher := &recordingPublisher{}
		d := NewDispatcher(cfg, repo, directory, slog.Default()).WithPublisher(publisher)
		Expect(d.Notify(ctx, ToUser("driver-1"), "hello", TypeTrip)).To(Succeed())
		d.Shutdown()
		Expect(publisher.seen).To(HaveLen(1))
	})
})
