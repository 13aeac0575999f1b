package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type document struct {
	ID           string    `bson:"_id"`
	RecipientID  *string   `bson:"recipient_id"`
	AudienceRole *string   `bson:"audience_role"`
	Message      string    `bson:"message"`
	Type         string    `bson:"type"`
	IsRead       bool      `bson:"is_read"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDocument(n *notification.Notification) document {
	var audience *string
	if n.AudienceRole != nil {
		r := string(*n.AudienceRole)
		audience = &r
	}
	return document{
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

func fromDocument(d document) *notification.Notification {
	var audience *identity.Role
	if d.AudienceRole != nil {
		r := identity.Role(*d.AudienceRole)
		audience = &r
	}
	return &notification.Notification{
		ID:           d.ID,
		RecipientID:  d.RecipientID,
		AudienceRole: audience,
		Message:      d.Message,
		Type:         notification.Type(d.Type),
		IsRead:       d.IsRead,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// NotificationRepository stores notifications as documents, for
// deployments that keep the notification feed outside Postgres.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(collection *mongo.Collection) *NotificationRepository {
	return &NotificationRepository{collection: collection}
}

// EnsureIndexes creates the index backing ListForRecipient.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "audience_role", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if r.collection == nil {
		return errors.New("mongo collection is nil")
	}
	_, err := r.collection.InsertOne(ctx, toDocument(n))
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	var doc document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	return fromDocument(doc), nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, userID string, role identity.Role) ([]*notification.Notification, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"recipient_id": userID},
		bson.M{"recipient_id": nil, "audience_role": string(role)},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]*notification.Notification, 0, len(docs))
	for _, d := range docs {
		items = append(items, fromDocument(d))
	}
	return items, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
