// Package testutil holds helpers shared by repository and service tests.
package testutil

import (
	"fmt"

	feedbackDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/feedback"
	fuelDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/fuel"
	maintenanceDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/maintenance"
	notificationDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/notification"
	tripDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/trip"
	userDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/user"
	vehicleDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/vehicle"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an in-memory database with every fleet table migrated.
// The pool is pinned to one connection so all goroutines share the same
// in-memory database.
func NewSQLiteDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&vehicleDatamodel.Vehicle{},
		&tripDatamodel.Trip{},
		&fuelDatamodel.FuelLog{},
		&maintenanceDatamodel.MaintenanceRequest{},
		&notificationDatamodel.Notification{},
		&feedbackDatamodel.Feedback{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
