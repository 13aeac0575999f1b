package feedback

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFeedback(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Feedback Module Suite")
}

type mockRepository struct {
	mu    sync.Mutex
	items map[string]*Feedback
}

func (m *mockRepository) Create(ctx context.Context, f *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.items[f.ID] = &cp
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.items[id]
	if !ok {
		return nil, ErrFeedbackNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context) ([]*Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Feedback, 0, len(m.items))
	for _, f := range m.items {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepository) Respond(ctx context.Context, id, response string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.items[id]
	if !ok {
		return ErrFeedbackNotFound
	}
	f.Status = StatusResponded
	f.Response = &response
	return nil
}

type recordingNotifier struct {
	messages []string
	types    []notification.Type
}

func (r *recordingNotifier) Notify(ctx context.Context, target notification.Target, message string, typ notification.Type) error {
	r.messages = append(r.messages, message)
	r.types = append(r.types, typ)
	return nil
}

var _ = Describe("Service", func() {
	var (
		repo     *mockRepository
		notifier *recordingNotifier
		service  *Service
		ctx      context.Context
		admin    identity.Identity
	)

	BeforeEach(func() {
		repo = &mockRepository{items: map[string]*Feedback{}}
		notifier = &recordingNotifier{}
		service = NewService(repo, notifier, auth.MustNewPolicy(slog.Default()), slog.Default())
		ctx = context.Background()
		admin = identity.Identity{UserID: "a-1", Role: identity.RoleAdmin}
	})

	It("accepts feedback without an account and tells admins", func() {
		f, err := service.Submit(ctx, SubmitFeedbackDTO{Name: "Pat", Email: "PAT@example.com", Message: "Great drivers"})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Status).To(Equal(StatusPending))
		Expect(f.Email).To(Equal("pat@example.com"))
		Expect(notifier.messages).To(ConsistOf("New feedback received from Pat"))
		Expect(notifier.types).To(ConsistOf(notification.TypeFeedback))
	})

	It("requires name, email and message", func() {
		_, err := service.Submit(ctx, SubmitFeedbackDTO{Email: "not-an-email"})
		Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeValidation))
		Expect(repo.items).To(BeEmpty())
	})

	It("lists newest first for admins only", func() {
		now := time.Now()
		Expect(repo.Create(ctx, &Feedback{ID: "old", CreatedAt: now.Add(-time.Hour)})).To(Succeed())
		Expect(repo.Create(ctx, &Feedback{ID: "new", CreatedAt: now})).To(Succeed())

		items, err := service.List(ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(items[0].ID).To(Equal("new"))

		_, err = service.List(ctx, identity.Identity{UserID: "p-1", Role: identity.RolePublicUser})
		Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
	})

	It("records a response", func() {
		f, err := service.Submit(ctx, SubmitFeedbackDTO{Name: "Pat", Email: "pat@example.com", Message: "hello"})
		Expect(err).NotTo(HaveOccurred())

		responded, err := service.Respond(ctx, admin, f.ID, RespondDTO{Response: "thanks"})
		Expect(err).NotTo(HaveOccurred())
		Expect(responded.Status).To(Equal(StatusResponded))
		Expect(*repo.items[f.ID].Response).To(Equal("thanks"))
	})

	It("reports unknown feedback", func() {
		_, err := service.Respond(ctx, admin, "ghost", RespondDTO{Response: "thanks"})
		Expect(err).To(MatchError(ErrFeedbackNotFound))
	})
})
