package postgres_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/fuel"
	"github.com/frahmantamala/fleet-management/internal/fuel/postgres"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/testutil"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	vehiclePostgres "github.com/frahmantamala/fleet-management/internal/vehicle/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestFuelRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FuelLogRepository Suite")
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, notification.Target, string, notification.Type) error {
	return nil
}

var _ = Describe("FuelLogRepository", func() {
	var (
		db      *gorm.DB
		repo    fuel.Repository
		service *fuel.Service
		ctx     context.Context
		admin   identity.Identity
		driver  identity.Identity
		day     time.Time
	)

	num := func(v float64) *float64 { return &v }

	BeforeEach(func() {
		var err error
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		day = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		vehicles := vehiclePostgres.NewVehicleRepository(db)
		Expect(vehicles.Create(ctx, &vehicle.Vehicle{
			ID:             "v-1",
			PlateNumber:    "B 1 XY",
			Model:          "Hilux",
			Type:           "pickup",
			Status:         vehicle.StatusActive,
			AssignedDriver: &vehicle.AssignedDriver{DriverID: "d-1", DriverName: "Dina"},
		})).To(Succeed())

		repo = postgres.NewFuelLogRepository(db)
		service = fuel.NewService(repo, vehicles, discardNotifier{}, nil, auth.MustNewPolicy(slog.Default()), slog.Default())
		admin = identity.Identity{UserID: "a-1", Role: identity.RoleAdmin}
		driver = identity.Identity{UserID: "d-1", Role: identity.RoleDriver, Name: "Dina"}
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	submitAndApprove := func(km, liters float64, refill time.Time) *fuel.FuelLog {
		f, err := service.Create(ctx, driver, fuel.CreateFuelLogDTO{
			VehicleID:  "v-1",
			KmReading:  num(km),
			FuelAmount: num(liters),
			TotalCost:  num(100),
			RefillDate: &refill,
		})
		Expect(err).NotTo(HaveOccurred())
		approved, err := service.Approve(ctx, admin, f.ID)
		Expect(err).NotTo(HaveOccurred())
		return approved
	}

	It("stores km/L only from the second approved refill", func() {
		first := submitAndApprove(1000, 40, day)
		Expect(first.KmPerLiter).To(BeNil())

		second := submitAndApprove(1200, 20, day.Add(24*time.Hour))
		stored, err := repo.GetByID(ctx, second.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.KmPerLiter).NotTo(BeNil())
		Expect(*stored.KmPerLiter).To(BeNumerically("~", 10.0, 1e-9))
	})

	It("stores null when the odometer went backwards", func() {
		submitAndApprove(1000, 40, day)
		back := submitAndApprove(900, 20, day.Add(24*time.Hour))

		stored, err := repo.GetByID(ctx, back.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.KmPerLiter).To(BeNil())
	})

	It("finds the previous approved log by refill date", func() {
		submitAndApprove(1000, 40, day)
		later := submitAndApprove(1200, 20, day.Add(24*time.Hour))

		prev, err := repo.PreviousApproved(ctx, "v-1", "none")
		Expect(err).NotTo(HaveOccurred())
		Expect(prev.ID).To(Equal(later.ID))

		prev, err = repo.PreviousApproved(ctx, "v-2", "none")
		Expect(err).NotTo(HaveOccurred())
		Expect(prev).To(BeNil())
	})

	It("locks the vehicle row inside a transaction", func() {
		err := repo.Atomically(ctx, func(tx fuel.Repository) error {
			if err := tx.LockVehicle(ctx, "v-1"); err != nil {
				return err
			}
			return tx.LockVehicle(ctx, "gone")
		})
		Expect(err).NotTo(HaveOccurred())
	})
})
