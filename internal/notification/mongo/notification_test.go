package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMongoNotificationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mongo NotificationRepository Suite")
}

var _ = Describe("document mapping", func() {
	It("keeps the audience role of broadcasts", func() {
		role := identity.RoleAdmin
		n := &notification.Notification{
			ID:           "n-1",
			AudienceRole: &role,
			Message:      "New fuel request from Budi.",
			Type:         notification.TypeFuel,
		}

		back := fromDocument(toDocument(n))
		Expect(back.RecipientID).To(BeNil())
		Expect(back.AudienceRole).NotTo(BeNil())
		Expect(*back.AudienceRole).To(Equal(identity.RoleAdmin))
		Expect(back.Type).To(Equal(notification.TypeFuel))
	})

	It("refuses to write without a collection", func() {
		repo := NewNotificationRepository(nil)
		Expect(repo.Create(context.Background(), &notification.Notification{ID: "n-2"})).NotTo(Succeed())
	})
})

var _ = Describe("NotificationRepository against a live server", func() {
	var repo *NotificationRepository

	BeforeEach(func() {
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			Skip("MONGO_URI not set, skipping integration test")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := Connect(ctx, uri)
		if err != nil {
			Skip("mongo unavailable: " + err.Error())
		}
		DeferCleanup(func() { _ = client.Disconnect(context.Background()) })

		coll := client.Database("fleet_test").Collection("notifications_" + uuid.NewString())
		DeferCleanup(func() { _ = coll.Drop(context.Background()) })

		repo = NewNotificationRepository(coll)
		Expect(repo.EnsureIndexes(ctx)).To(Succeed())
	})

	It("lists own and role-broadcast notifications newest first and marks them read", func() {
		ctx := context.Background()
		driverID := "driver-1"
		role := identity.RoleAdmin

		older := &notification.Notification{ID: uuid.NewString(), RecipientID: &driverID, Message: "first", Type: notification.TypeTrip, CreatedAt: time.Now().Add(-time.Hour)}
		newer := &notification.Notification{ID: uuid.NewString(), RecipientID: &driverID, Message: "second", Type: notification.TypeTrip, CreatedAt: time.Now()}
		broadcast := &notification.Notification{ID: uuid.NewString(), AudienceRole: &role, Message: "admins", Type: notification.TypeUser, CreatedAt: time.Now()}
		for _, n := range []*notification.Notification{older, newer, broadcast} {
			Expect(repo.Create(ctx, n)).To(Succeed())
		}

		items, err := repo.ListForRecipient(ctx, driverID, identity.RoleDriver)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
		Expect(items[0].Message).To(Equal("second"))

		Expect(repo.MarkRead(ctx, older.ID)).To(Succeed())
		got, err := repo.GetByID(ctx, older.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.IsRead).To(BeTrue())

		Expect(repo.MarkRead(ctx, "missing")).To(MatchError(notification.ErrNotificationNotFound))
	})
})
