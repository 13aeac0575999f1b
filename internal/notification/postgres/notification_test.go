package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestNotificationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationRepository Suite")
}

var _ = Describe("NotificationRepository", func() {
	var (
		db   *gorm.DB
		repo notification.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		repo = NewNotificationRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	newNotification := func(id string, recipient *string, audience *identity.Role, at time.Time) *notification.Notification {
		return &notification.Notification{
			ID:           id,
			RecipientID:  recipient,
			AudienceRole: audience,
			Message:      "message " + id,
			Type:         notification.TypeMaintenance,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
	}

	Describe("ListForRecipient", func() {
		It("returns direct and role-broadcast records newest first", func() {
			alice := "user-alice"
			bob := "user-bob"
			admin := identity.RoleAdmin
			now := time.Now()

			Expect(repo.Create(ctx, newNotification("n1", &alice, nil, now.Add(-2*time.Hour)))).To(Succeed())
			Expect(repo.Create(ctx, newNotification("n2", &bob, nil, now.Add(-time.Hour)))).To(Succeed())
			Expect(repo.Create(ctx, newNotification("n3", nil, &admin, now))).To(Succeed())

			items, err := repo.ListForRecipient(ctx, alice, identity.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].ID).To(Equal("n3"))
			Expect(items[1].ID).To(Equal("n1"))

			items, err = repo.ListForRecipient(ctx, bob, identity.RoleDriver)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ID).To(Equal("n2"))
		})
	})

	Describe("MarkRead", func() {
		It("flips is_read", func() {
			alice := "user-alice"
			Expect(repo.Create(ctx, newNotification("n1", &alice, nil, time.Now()))).To(Succeed())

			Expect(repo.MarkRead(ctx, "n1")).To(Succeed())
			n, err := repo.GetByID(ctx, "n1")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.IsRead).To(BeTrue())
		})

		It("reports missing records", func() {
			Expect(repo.MarkRead(ctx, "nope")).To(MatchError(notification.ErrNotificationNotFound))
			_, err := repo.GetByID(ctx, "nope")
			Expect(err).To(MatchError(notification.ErrNotificationNotFound))
		})
	})
})
