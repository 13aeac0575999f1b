package maintenance

import "time"

type MaintenanceRequest struct {
	ID               string    `gorm:"primaryKey;size:36"`
	VehicleID        string    `gorm:"column:vehicle_id;size:36;index;not null"`
	DriverID         string    `gorm:"column:driver_id;size:36;index;not null"`
	RequestType      string    `gorm:"column:request_type;not null"`
	IssueDescription string    `gorm:"column:issue_description;not null"`
	Status           string    `gorm:"column:status;not null"`
	AdminResponse    *string   `gorm:"column:admin_response"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}
