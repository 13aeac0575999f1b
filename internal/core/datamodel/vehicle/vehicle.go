package vehicle

import "time"

type Vehicle struct {
	ID                    string     `gorm:"primaryKey;size:36"`
	PlateNumber           string     `gorm:"column:plate_number;uniqueIndex;not null"`
	Model                 string     `gorm:"column:model;not null"`
	Type                  string     `gorm:"column:type;not null"`
	AssignedDriverID      *string    `gorm:"column:assigned_driver_id;size:36;uniqueIndex"`
	AssignedDriverName    *string    `gorm:"column:assigned_driver_name"`
	Status                string     `gorm:"column:status;not null"`
	LastMaintenanceDate   *time.Time `gorm:"column:last_maintenance_date"`
	MaintenanceRemindedAt *time.Time `gorm:"column:maintenance_reminded_at"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
