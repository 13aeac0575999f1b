package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/testutil"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	vehiclePostgres "github.com/frahmantamala/fleet-management/internal/vehicle/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestScanner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scanner Suite")
}

type reminder struct {
	DriverID string
	Message  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []reminder
	fail bool
}

func (r *recordingNotifier) Notify(ctx context.Context, target notification.Target, message string, typ notification.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("directory unavailable")
	}
	Expect(typ).To(Equal(notification.TypeMaintenance))
	r.sent = append(r.sent, reminder{DriverID: target.UserID, Message: message})
	return nil
}

// staticStore hands the scanner a fixed candidate list.
type staticStore struct {
	candidates []*vehicle.Vehicle
	stamped    []string
}

func (s *staticStore) ListMaintenanceCandidates(ctx context.Context, cutoff time.Time, dedupe bool) ([]*vehicle.Vehicle, error) {
	return s.candidates, nil
}

func (s *staticStore) StampReminded(ctx context.Context, id string, at time.Time) error {
	s.stamped = append(s.stamped, id)
	return nil
}

var _ = Describe("Scanner", func() {
	var (
		db       *gorm.DB
		vehicles *vehiclePostgres.VehicleRepository
		notifier *recordingNotifier
		ctx      context.Context
		now      time.Time
	)

	at := func(t time.Time) *time.Time { return &t }

	register := func(id, plate string, driver string, created time.Time, lastMaintenance *time.Time) {
		v := &vehicle.Vehicle{
			ID:                  id,
			PlateNumber:         plate,
			Model:               "Hilux",
			Type:                "pickup",
			Status:              vehicle.StatusActive,
			LastMaintenanceDate: lastMaintenance,
			CreatedAt:           created,
			UpdatedAt:           created,
		}
		if driver != "" {
			v.AssignedDriver = &vehicle.AssignedDriver{DriverID: driver, DriverName: driver}
		}
		Expect(vehicles.Create(ctx, v)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		vehicles = vehiclePostgres.NewVehicleRepository(db)
		notifier = &recordingNotifier{}
		ctx = context.Background()
		now = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

		longAgo := now.AddDate(-1, 0, 0)
		register("v-old", "B 1 OLD", "d-1", longAgo, at(now.AddDate(0, -5, 0)))
		register("v-fresh", "B 2 NEW", "d-2", longAgo, at(now.AddDate(0, -1, 0)))
		register("v-never", "B 3 NVR", "d-3", longAgo, nil)
		register("v-young", "B 4 YNG", "d-4", now.AddDate(0, -1, 0), nil)
		register("v-idle", "B 5 IDL", "", longAgo, nil)
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	It("reminds the drivers of overdue vehicles", func() {
		s := New(Config{Dedupe: true}, vehicles, notifier, slog.Default())

		sent, err := s.Scan(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))
		Expect(notifier.sent).To(ConsistOf(
			reminder{DriverID: "d-1", Message: "Your assigned vehicle (B 1 OLD) is due for scheduled maintenance."},
			reminder{DriverID: "d-3", Message: "Your assigned vehicle (B 3 NVR) is due for scheduled maintenance."},
		))
	})

	It("reminds once per overdue period with dedupe", func() {
		s := New(Config{Dedupe: true}, vehicles, notifier, slog.Default())

		_, err := s.Scan(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		sent, err := s.Scan(ctx, now.AddDate(0, 0, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(BeZero())

		v, err := vehicles.GetByID(ctx, "v-old")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.MaintenanceRemindedAt).NotTo(BeNil())

		sent, err = s.Scan(ctx, now.AddDate(0, 4, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(BeNumerically(">=", 2))
	})

	It("re-notifies daily without dedupe", func() {
		s := New(Config{Dedupe: false}, vehicles, notifier, slog.Default())

		_, err := s.Scan(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		sent, err := s.Scan(ctx, now.AddDate(0, 0, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(2))
		Expect(notifier.sent).To(HaveLen(4))
	})

	It("does not stamp vehicles whose reminder failed", func() {
		notifier.fail = true
		s := New(Config{Dedupe: true}, vehicles, notifier, slog.Default())

		sent, err := s.Scan(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(BeZero())

		v, err := vehicles.GetByID(ctx, "v-old")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.MaintenanceRemindedAt).To(BeNil())
	})

	Describe("NextRun", func() {
		It("picks today when the run time is still ahead", func() {
			s := New(Config{RunAt: "09:30"}, vehicles, notifier, slog.Default())
			next, err := s.NextRun(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC))
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)))
		})

		It("rolls over to tomorrow once the run time has passed", func() {
			s := New(Config{RunAt: "09:30"}, vehicles, notifier, slog.Default())
			next, err := s.NextRun(time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC))
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)))
		})

		It("rejects malformed times", func() {
			s := New(Config{RunAt: "noon"}, vehicles, notifier, slog.Default())
			_, err := s.NextRun(now)
			Expect(err).To(HaveOccurred())
		})
	})

	It("stops when the context is cancelled", func() {
		s := New(Config{RunAt: "00:00"}, vehicles, notifier, slog.Default())
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- s.Run(runCtx) }()

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("skips candidates whose baseline is after the cutoff", func() {
		serviced := now.AddDate(0, -1, 0)
		store := &staticStore{candidates: []*vehicle.Vehicle{
			{ID: "v-recent", PlateNumber: "B 6 RCN", CreatedAt: now.AddDate(-2, 0, 0), LastMaintenanceDate: &serviced,
				AssignedDriver: &vehicle.AssignedDriver{DriverID: "d-6"}},
			{ID: "v-due", PlateNumber: "B 7 DUE", CreatedAt: now.AddDate(-2, 0, 0),
				AssignedDriver: &vehicle.AssignedDriver{DriverID: "d-7"}},
		}}
		s := New(Config{Dedupe: true}, store, notifier, slog.Default())

		sent, err := s.Scan(ctx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sent).To(Equal(1))
		Expect(notifier.sent).To(ConsistOf(
			reminder{DriverID: "d-7", Message: "Your assigned vehicle (B 7 DUE) is due for scheduled maintenance."},
		))
		Expect(store.stamped).To(ConsistOf("v-due"))
	})
})
