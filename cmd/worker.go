package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	authPostgres "github.com/frahmantamala/fleet-management/internal/auth/postgres"
	vehiclePostgres "github.com/frahmantamala/fleet-management/internal/vehicle/postgres"
	"github.com/frahmantamala/fleet-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server, such as the overdue-maintenance scanner.`,
}

var scannerWorkerCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Start the overdue-maintenance scanner",
	Long:  `Remind drivers whose vehicle is overdue for scheduled maintenance, once a day at scheduler.run_at.`,
	Run: func(cmd *cobra.Command, args []string) {
		startScannerWorker()
	},
}

var (
	scanOnce     bool
	overdueAfter int
	runAt        string
)

func startScannerWorker() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logCloser := setupLogger(cfg)
	defer logCloser.Close()

	lg := logger.LoggerWrapper()

	cfg.Scheduler.OverdueAfterMonths = getIntFlag(overdueAfter, cfg.Scheduler.OverdueAfterMonths)
	cfg.Scheduler.RunAt = getStringFlag(runAt, cfg.Scheduler.RunAt)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := initDB(cfg.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := openGorm(db, cfg.Environment)
	if err != nil {
		lg.Error("failed to initialize gorm", "error", err)
		os.Exit(1)
	}

	notifications, err := newNotificationStack(ctx, cfg.Notification, gormDB, authPostgres.NewRepository(gormDB), lg)
	if err != nil {
		lg.Error("failed to initialize notifications", "error", err)
		os.Exit(1)
	}
	defer notifications.Close()

	s := newScanner(cfg.Scheduler, vehiclePostgres.NewVehicleRepository(gormDB), notifications.Dispatcher, lg)

	if scanOnce {
		scanCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		sent, err := s.Scan(scanCtx, time.Now())
		if err != nil {
			lg.Error("maintenance scan failed", "error", err)
			return
		}
		lg.Info("maintenance scan finished", "reminders_sent", sent)
		return
	}

	lg.Info("scanner worker is running. Press Ctrl+C to stop.",
		"run_at", cfg.Scheduler.RunAt,
		"overdue_after_months", cfg.Scheduler.OverdueAfterMonths,
		"dedupe", cfg.Scheduler.Dedupe)

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("maintenance scanner stopped", "error", err)
		return
	}
	lg.Info("scanner worker shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	scannerWorkerCmd.Flags().BoolVar(&scanOnce, "once", false, "Run a single scan now and exit")
	scannerWorkerCmd.Flags().IntVar(&overdueAfter, "overdue-after-months", 0, "Months since last maintenance before a reminder (overrides config)")
	scannerWorkerCmd.Flags().StringVar(&runAt, "run-at", "", "Daily scan time as HH:MM (overrides config)")

	workerCmd.AddCommand(scannerWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
