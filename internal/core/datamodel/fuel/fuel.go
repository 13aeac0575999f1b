package fuel

import "time"

type FuelLog struct {
	ID         string    `gorm:"primaryKey;size:36"`
	VehicleID  string    `gorm:"column:vehicle_id;size:36;index;not null"`
	DriverID   string    `gorm:"column:driver_id;size:36;index;not null"`
	DriverName string    `gorm:"column:driver_name;not null"`
	KmReading  float64   `gorm:"column:km_reading;not null"`
	FuelAmount float64   `gorm:"column:fuel_amount;not null"`
	TotalCost  float64   `gorm:"column:total_cost;not null"`
	RefillDate time.Time `gorm:"column:refill_date;index;not null"`
	Status     string    `gorm:"column:status;not null"`
	KmPerLiter *float64  `gorm:"column:km_per_liter"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (FuelLog) TableName() string {
	return "fuel_logs"
}
