package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTripApproved         = "trip.approved"
	EventTypeFuelLogApproved      = "fuel.approved"
	EventTypeMaintenanceCreated   = "maintenance.created"
	EventTypeMaintenanceCompleted = "maintenance.completed"
)

// NewEvent builds a BaseEvent with a fresh id and the current time.
func NewEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type TripApprovedEvent struct {
	BaseEvent
	TripID    string `json:"trip_id"`
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
}

func NewTripApprovedEvent(tripID, vehicleID, driverID string) *TripApprovedEvent {
	return &TripApprovedEvent{
		BaseEvent: NewEvent(EventTypeTripApproved, map[string]interface{}{
			"trip_id":    tripID,
			"vehicle_id": vehicleID,
			"driver_id":  driverID,
		}),
		TripID:    tripID,
		VehicleID: vehicleID,
		DriverID:  driverID,
	}
}

type FuelLogApprovedEvent struct {
	BaseEvent
	FuelLogID  string   `json:"fuel_log_id"`
	VehicleID  string   `json:"vehicle_id"`
	DriverID   string   `json:"driver_id"`
	KmPerLiter *float64 `json:"km_per_liter,omitempty"`
}

func NewFuelLogApprovedEvent(fuelLogID, vehicleID, driverID string, kmPerLiter *float64) *FuelLogApprovedEvent {
	return &FuelLogApprovedEvent{
		BaseEvent: NewEvent(EventTypeFuelLogApproved, map[string]interface{}{
			"fuel_log_id":  fuelLogID,
			"vehicle_id":   vehicleID,
			"driver_id":    driverID,
			"km_per_liter": kmPerLiter,
		}),
		FuelLogID:  fuelLogID,
		VehicleID:  vehicleID,
		DriverID:   driverID,
		KmPerLiter: kmPerLiter,
	}
}

type MaintenanceEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
}

func NewMaintenanceEvent(eventType, requestID, vehicleID, driverID string) *MaintenanceEvent {
	return &MaintenanceEvent{
		BaseEvent: NewEvent(eventType, map[string]interface{}{
			"request_id": requestID,
			"vehicle_id": vehicleID,
			"driver_id":  driverID,
		}),
		RequestID: requestID,
		VehicleID: vehicleID,
		DriverID:  driverID,
	}
}
