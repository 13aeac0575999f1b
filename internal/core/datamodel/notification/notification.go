package notification

import "time"

type Notification struct {
	ID           string    `gorm:"primaryKey;size:36"`
	RecipientID  *string   `gorm:"column:recipient_id;size:36;index"`
	AudienceRole *string   `gorm:"column:audience_role;index"`
	Message      string    `gorm:"column:message;not null"`
	Type         string    `gorm:"column:type;not null"`
	IsRead       bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
