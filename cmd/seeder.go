package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	Email string
	Name  string
	Role  string
}

var seedUsers = []seedUser{
	{"admin@fleet.local", "Fleet Admin", "admin"},
	{"dina@fleet.local", "Dina", "driver"},
	{"budi@fleet.local", "Budi", "driver"},
	{"head@fleet.local", "Rina Head", "department_head"},
	{"guest@fleet.local", "Guest", "public_user"},
}

var seedVehicles = []struct {
	Plate  string
	Model  string
	Type   string
	Driver string
}{
	{"B 1234 FLT", "Toyota Avanza", "MPV", "dina@fleet.local"},
	{"B 5678 FLT", "Mitsubishi L300", "Pickup", "budi@fleet.local"},
	{"B 9012 FLT", "Isuzu Elf", "Truck", ""},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with one account per role and a few vehicles for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := openGorm(sqlDB, cfg.Environment)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			clearSeedData(db)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		userIDs := make(map[string]string, len(seedUsers))
		for _, u := range seedUsers {
			var id string
			if err := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row().Scan(&id); err == nil {
				fmt.Printf("%s already exists; keeping it\n", u.Email)
				userIDs[u.Email] = id
				continue
			}

			id = uuid.NewString()
			if err := db.Exec("INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
				id, u.Name, u.Email, string(hash), u.Role).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			userIDs[u.Email] = id
			fmt.Printf("Seeded %s: %s\n", u.Role, u.Email)
		}

		for _, v := range seedVehicles {
			var exists int
			if err := db.Raw("SELECT 1 FROM vehicles WHERE plate_number = ?", v.Plate).Row().Scan(&exists); err == nil {
				continue
			}

			var driverID, driverName interface{}
			if v.Driver != "" {
				driverID = userIDs[v.Driver]
				for _, u := range seedUsers {
					if u.Email == v.Driver {
						driverName = u.Name
					}
				}
			}

			if err := db.Exec("INSERT INTO vehicles (id, plate_number, model, type, assigned_driver_id, assigned_driver_name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, 'Active', now(), now())",
				uuid.NewString(), v.Plate, v.Model, v.Type, driverID, driverName).Error; err != nil {
				log.Fatalf("failed to insert vehicle %s: %v", v.Plate, err)
			}
			fmt.Printf("Seeded vehicle: %s\n", v.Plate)
		}

		fmt.Println("Seed data ready. Every seeded account uses the password \"password\".")
	},
}

func clearSeedData(db *gorm.DB) {
	tables := []string{"notifications", "feedback", "maintenance_requests", "fuel_logs", "trips", "vehicles", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}
