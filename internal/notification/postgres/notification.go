package postgres

import (
	"context"
	"errors"

	notificationDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(notification.ToDataModel(n)).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	var row notificationDatamodel.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification.FromDataModel(&row), nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, userID string, role identity.Role) ([]*notification.Notification, error) {
	var rows []notificationDatamodel.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? OR (recipient_id IS NULL AND audience_role = ?)", userID, string(role)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		items = append(items, notification.FromDataModel(&rows[i]))
	}
	return items, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
