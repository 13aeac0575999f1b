package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/auth"
	authPostgres "github.com/frahmantamala/fleet-management/internal/auth/postgres"
	"github.com/frahmantamala/fleet-management/internal/core/events"
	"github.com/frahmantamala/fleet-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/fleet-management/internal/dashboard/postgres"
	"github.com/frahmantamala/fleet-management/internal/feedback"
	feedbackPostgres "github.com/frahmantamala/fleet-management/internal/feedback/postgres"
	"github.com/frahmantamala/fleet-management/internal/fuel"
	fuelPostgres "github.com/frahmantamala/fleet-management/internal/fuel/postgres"
	"github.com/frahmantamala/fleet-management/internal/maintenance"
	maintenancePostgres "github.com/frahmantamala/fleet-management/internal/maintenance/postgres"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/report"
	reportPostgres "github.com/frahmantamala/fleet-management/internal/report/postgres"
	"github.com/frahmantamala/fleet-management/internal/scanner"
	"github.com/frahmantamala/fleet-management/internal/transport/rest"
	"github.com/frahmantamala/fleet-management/internal/transport/swagger"
	"github.com/frahmantamala/fleet-management/internal/trip"
	tripPostgres "github.com/frahmantamala/fleet-management/internal/trip/postgres"
	"github.com/frahmantamala/fleet-management/internal/user"
	userPostgres "github.com/frahmantamala/fleet-management/internal/user/postgres"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	vehiclePostgres "github.com/frahmantamala/fleet-management/internal/vehicle/postgres"
	"github.com/frahmantamala/fleet-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	Gorm          *gorm.DB
	Router        *chi.Mux
	HealthChecker *rest.HealthHandler
	Logger        *slog.Logger
	Policy        *auth.Policy
	Events        *events.EventBus
	Notifications *notificationStack
	Scanner       *scanner.Scanner
	Handlers      rest.Handlers

	// cancel stops the context handed to background tasks.
	cancel     context.CancelFunc
	background sync.WaitGroup
	closeOnce  sync.Once
}

// Background runs fn on its own goroutine. Close cancels ctx through the
// dependencies' cancel func and waits for fn to return.
func (d *Dependencies) Background(ctx context.Context, name string, fn func(context.Context) error) {
	d.background.Add(1)
	go func() {
		defer d.background.Done()
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.Logger.Error("background task stopped", "task", name, "error", err)
		}
	}()
}

// Close releases everything in reverse order of construction. Background
// tasks stop first, then event handlers and the notification queue drain
// before the database goes away. Only the first call does anything.
func (d *Dependencies) Close() {
	d.closeOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.background.Wait()
		if d.Events != nil {
			d.Events.Wait()
		}
		if d.Notifications != nil {
			d.Notifications.Close()
		}
		if d.DB != nil {
			if err := d.DB.Close(); err != nil {
				d.Logger.Error("Database close error", "error", err)
			}
		}
	})
}

func startHTTPServer() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logCloser := setupLogger(cfg)
	defer logCloser.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	deps.cancel = stop
	defer deps.Close()

	setupRoutes(deps)

	if cfg.Scheduler.Enabled {
		deps.Background(ctx, "maintenance scanner", deps.Scanner.Run)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "environment", cfg.Environment)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, deps.Config.Server, deps.Policy, deps.Handlers, deps.Logger)
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := openGorm(db, cfg.Environment)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	policy, err := auth.NewPolicy(lg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load role policy: %w", err)
	}

	authRepo := authPostgres.NewRepository(gormDB)
	notifications, err := newNotificationStack(ctx, cfg.Notification, gormDB, authRepo, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dispatcher := notifications.Dispatcher

	bus := events.NewEventBus(lg)
	reportCache := report.NewCache(cfg.Report.CacheSize, cfg.Report.CacheTTL, lg)
	reportCache.Subscribe(bus)

	userRepo := userPostgres.NewUserRepository(gormDB)
	vehicleRepo := vehiclePostgres.NewVehicleRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(authRepo, tokenGen, dispatcher, cfg.Security.BCryptCost, lg)
	userService := user.NewService(userRepo, policy, lg)
	vehicleService := vehicle.NewService(vehicleRepo, userRepo, policy, lg)
	tripService := trip.NewService(tripPostgres.NewTripRepository(gormDB), vehicleRepo, userRepo, dispatcher, bus, policy, lg)
	fuelService := fuel.NewService(fuelPostgres.NewFuelLogRepository(gormDB), vehicleRepo, dispatcher, bus, policy, lg)
	maintenanceService := maintenance.NewService(maintenancePostgres.NewMaintenanceRepository(gormDB), dispatcher, bus, policy, lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(gormDB), reportCache, policy, lg)
	notificationService := notification.NewService(notifications.Repo, policy, lg)
	feedbackService := feedback.NewService(feedbackPostgres.NewFeedbackRepository(gormDB), dispatcher, policy, lg)
	dashboardService := dashboard.NewService(dashboardPostgres.NewDashboardRepository(db), policy, lg)

	if _, err := swagger.Load(ctx, cfg.Server.OpenAPIPath); err != nil {
		lg.Warn("openapi document unavailable, serving API without docs", "error", err)
		cfg.Server.OpenAPIPath = ""
	}

	healthChecker := rest.NewHealthHandler(db)
	if notifications.Check != nil {
		healthChecker.WithChecker(cfg.Notification.Store, notifications.Check)
	}

	return &Dependencies{
		Config:        cfg,
		DB:            db,
		Gorm:          gormDB,
		Router:        chi.NewRouter(),
		HealthChecker: healthChecker,
		Logger:        lg,
		Policy:        policy,
		Events:        bus,
		Notifications: notifications,
		Scanner:       newScanner(cfg.Scheduler, vehicleRepo, dispatcher, lg),
		Handlers: rest.Handlers{
			Health:       healthChecker,
			Auth:         auth.NewHandler(authService),
			User:         user.NewHandler(userService),
			Vehicle:      vehicle.NewHandler(vehicleService),
			Trip:         trip.NewHandler(tripService),
			Fuel:         fuel.NewHandler(fuelService),
			Maintenance:  maintenance.NewHandler(maintenanceService),
			Report:       report.NewHandler(reportService),
			Notification: notification.NewHandler(notificationService),
			Feedback:     feedback.NewHandler(feedbackService),
			Dashboard:    dashboard.NewHandler(dashboardService),
		},
	}, nil
}

func newScanner(cfg internal.SchedulerConfig, vehicles scanner.VehicleStore, notifier notification.Notifier, lg *slog.Logger) *scanner.Scanner {
	return scanner.New(scanner.Config{
		RunAt:              cfg.RunAt,
		OverdueAfterMonths: cfg.OverdueAfterMonths,
		Dedupe:             cfg.Dedupe,
	}, vehicles, notifier, lg)
}

// initDB opens the pgx-backed pool shared by gorm and the sqlx queries.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// openGorm layers gorm over an existing pool so both share connections.
func openGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env == "development" {
		level = gormLogger.Info
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gormDB, nil
}
