package feedback

import "time"

type Feedback struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Message   string    `gorm:"column:message;not null"`
	Status    string    `gorm:"column:status;not null"`
	Response  *string   `gorm:"column:response"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Feedback) TableName() string {
	return "feedback"
}
