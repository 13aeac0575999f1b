package report

import (
	"context"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
)

// Point is one sample of the km/L series drawn on a driver report.
type Point struct {
	RefillDate time.Time `json:"refill_date"`
	KmPerLiter *float64  `json:"km_per_liter"`
}

type DriverReport struct {
	DriverID                 string  `json:"driver_id"`
	Driver                   string  `json:"driver"`
	TotalTrips               int64   `json:"total_trips"`
	TotalFuelUsed            float64 `json:"total_fuel_used"`
	TotalMaintenanceRequests int64   `json:"total_maintenance_requests"`
	AvgKmPerLiter            float64 `json:"avg_km_per_liter"`
	KmPerLiterData           []Point `json:"km_per_liter_data"`
}

type VehicleReport struct {
	VehicleID        string  `json:"vehicle_id"`
	Vehicle          string  `json:"vehicle"`
	TotalKmDriven    float64 `json:"total_km_driven"`
	TotalFuelUsed    float64 `json:"total_fuel_used"`
	AvgKmPerLiter    float64 `json:"avg_km_per_liter"`
	TotalMaintenance int64   `json:"total_maintenance"`
	TotalTrips       int64   `json:"total_trips"`
}

// Subject is the driver or vehicle a report is about.
type Subject struct {
	ID    string
	Label string
}

// Filter narrows the counted records to one driver or one vehicle.
type Filter struct {
	DriverID  string
	VehicleID string
}

// FuelEntry is an approved refill.
type FuelEntry struct {
	RefillDate time.Time
	KmReading  float64
	FuelAmount float64
	KmPerLiter *float64
}

type Repository interface {
	// FindDriver returns ErrDriverNotFound unless id is a user with the
	// driver role.
	FindDriver(ctx context.Context, id string) (*Subject, error)
	FindVehicle(ctx context.Context, id string) (*Subject, error)
	CountTrips(ctx context.Context, f Filter) (int64, error)
	CountMaintenance(ctx context.Context, f Filter) (int64, error)
	// ApprovedFuel returns approved refills ordered by refill date ascending.
	ApprovedFuel(ctx context.Context, f Filter) ([]FuelEntry, error)
}

var (
	ErrDriverNotFound  = internal.NewNotFoundError("Driver not found", internal.ErrCodeDriverNotFound)
	ErrVehicleNotFound = internal.NewNotFoundError("Vehicle not found", internal.ErrCodeVehicleNotFound)
)

// BuildDriverReport folds a driver's approved refills into report figures.
func BuildDriverReport(subject *Subject, trips, maintenance int64, entries []FuelEntry) *DriverReport {
	r := &DriverReport{
		DriverID:                 subject.ID,
		Driver:                   subject.Label,
		TotalTrips:               trips,
		TotalMaintenanceRequests: maintenance,
		KmPerLiterData:           make([]Point, 0, len(entries)),
	}

	values := make([]*float64, 0, len(entries))
	for _, e := range entries {
		r.TotalFuelUsed += e.FuelAmount
		values = append(values, e.KmPerLiter)
		r.KmPerLiterData = append(r.KmPerLiterData, Point{RefillDate: e.RefillDate, KmPerLiter: e.KmPerLiter})
	}
	sortPoints(r.KmPerLiterData)
	r.AvgKmPerLiter = MeanKmPerLiter(values)
	return r
}

func BuildVehicleReport(subject *Subject, trips, maintenance int64, entries []FuelEntry) *VehicleReport {
	readings := make([]Reading, 0, len(entries))
	for _, e := range entries {
		readings = append(readings, Reading{KmReading: e.KmReading, FuelAmount: e.FuelAmount})
	}
	totals := VehicleTotals(readings)

	return &VehicleReport{
		VehicleID:        subject.ID,
		Vehicle:          subject.Label,
		TotalKmDriven:    totals.TotalKmDriven,
		TotalFuelUsed:    totals.TotalFuelUsed,
		AvgKmPerLiter:    totals.AvgKmPerLiter,
		TotalMaintenance: maintenance,
		TotalTrips:       trips,
	}
}
