package dashboard

import "context"

type UserDistribution struct {
	Admins          int64 `json:"admins"`
	Drivers         int64 `json:"drivers"`
	DepartmentHeads int64 `json:"department_heads"`
	PublicUsers     int64 `json:"public_users"`
}

type VehicleUsage struct {
	PlateNumber string `json:"plate_number" db:"plate_number"`
	TripCount   int64  `json:"trip_count" db:"trip_count"`
}

type MonthlyFuel struct {
	Year      int     `json:"year" db:"year"`
	Month     int     `json:"month" db:"month"`
	TotalFuel float64 `json:"total_fuel" db:"total_fuel"`
}

type MonthlyMaintenance struct {
	Year          int   `json:"year" db:"year"`
	Month         int   `json:"month" db:"month"`
	TotalRequests int64 `json:"total_requests" db:"total_requests"`
}

type Dashboard struct {
	UserDistribution UserDistribution     `json:"user_distribution"`
	VehicleUsage     []VehicleUsage       `json:"vehicle_usage"`
	FuelUsage        []MonthlyFuel        `json:"fuel_usage"`
	MaintenanceTrend []MonthlyMaintenance `json:"maintenance_trend"`
}

// Repository runs the fleet-wide aggregate queries. Monthly series are
// ordered by year then month.
type Repository interface {
	UserDistribution(ctx context.Context) (UserDistribution, error)
	VehicleUsage(ctx context.Context) ([]VehicleUsage, error)
	FuelUsage(ctx context.Context) ([]MonthlyFuel, error)
	MaintenanceTrend(ctx context.Context) ([]MonthlyMaintenance, error)
}
