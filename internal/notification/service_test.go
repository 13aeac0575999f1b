package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Module Suite")
}

type allowAll struct{}

func (allowAll) Authorize(identity.Identity, string, string) error { return nil }

type mockRepository struct {
	mu        sync.Mutex
	items     map[string]*Notification
	order     []string
	failTimes int
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: map[string]*Notification{}}
}

func (m *mockRepository) Create(ctx context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.failTimes > 0 {
		m.failTimes--
		return errors.New("transient write failure")
	}
	cp := *n
	m.items[n.ID] = &cp
	m.order = append(m.order, n.ID)
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockRepository) ListForRecipient(ctx context.Context, userID string, role identity.Role) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.items[m.order[i]]
		if n.VisibleTo(identity.Identity{UserID: userID, Role: role}) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockRepository) all() []*Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Notification, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

var _ = Describe("Service", func() {
	var (
		repo    *mockRepository
		service *Service
		ctx     context.Context
		owner   identity.Identity
		other   identity.Identity
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, allowAll{}, slog.Default())
		ctx = context.Background()
		owner = identity.Identity{UserID: "driver-1", Role: identity.RoleDriver}
		other = identity.Identity{UserID: "driver-2", Role: identity.RoleDriver}

		recipient := owner.UserID
		Expect(repo.Create(ctx, &Notification{ID: "n-1", RecipientID: &recipient, Message: "Your fuel request has been approved.", Type: TypeFuel})).To(Succeed())
	})

	Describe("MarkRead", func() {
		It("marks the recipient's notification as read", func() {
			n, err := service.MarkRead(ctx, owner, "n-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.IsRead).To(BeTrue())
		})

		It("forbids a non-recipient and leaves is_read false", func() {
			_, err := service.MarkRead(ctx, other, "n-1")
			Expect(err).To(MatchError(ErrNotRecipient))
			Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeForbidden))

			stored, _ := repo.GetByID(ctx, "n-1")
			Expect(stored.IsRead).To(BeFalse())
		})

		It("returns not found for unknown ids", func() {
			_, err := service.MarkRead(ctx, owner, "missing")
			Expect(err).To(MatchError(ErrNotificationNotFound))
		})

		It("lets any holder of the audience role acknowledge a broadcast", func() {
			role := identity.RoleAdmin
			Expect(repo.Create(ctx, &Notification{ID: "n-2", AudienceRole: &role, Message: "New user registered", Type: TypeUser})).To(Succeed())

			_, err := service.MarkRead(ctx, owner, "n-2")
			Expect(err).To(MatchError(ErrNotRecipient))

			n, err := service.MarkRead(ctx, identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}, "n-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.IsRead).To(BeTrue())
		})

		It("shares one read flag across every holder of the audience role", func() {
			role := identity.RoleAdmin
			Expect(repo.Create(ctx, &Notification{ID: "n-4", AudienceRole: &role, Message: "New feedback received from Rina", Type: TypeFeedback})).To(Succeed())

			_, err := service.MarkRead(ctx, identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}, "n-4")
			Expect(err).NotTo(HaveOccurred())

			items, err := service.ListForUser(ctx, identity.Identity{UserID: "admin-2", Role: identity.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].IsRead).To(BeTrue())
		})
	})

	Describe("ListForUser", func() {
		It("returns only the caller's notifications, newest first", func() {
			recipient := owner.UserID
			Expect(repo.Create(ctx, &Notification{ID: "n-3", RecipientID: &recipient, Message: "later", Type: TypeTrip})).To(Succeed())

			items, err := service.ListForUser(ctx, owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].ID).To(Equal("n-3"))

			items, err = service.ListForUser(ctx, other)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})
})
