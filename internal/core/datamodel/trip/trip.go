package trip

import "time"

type Trip struct {
	ID          string    `gorm:"primaryKey;size:36"`
	RequestedBy string    `gorm:"column:requested_by;size:36;index;not null"`
	VehicleID   *string   `gorm:"column:vehicle_id;size:36;index"`
	DriverID    *string   `gorm:"column:driver_id;size:36;index"`
	Status      string    `gorm:"column:status;not null"`
	TripDate    time.Time `gorm:"column:trip_date;not null"`
	Destination string    `gorm:"column:destination;not null"`
	Reason      string    `gorm:"column:reason;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Trip) TableName() string {
	return "trips"
}
