// Package scanner reminds drivers when their vehicle is overdue for
// scheduled maintenance.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
)

type VehicleStore interface {
	ListMaintenanceCandidates(ctx context.Context, cutoff time.Time, dedupe bool) ([]*vehicle.Vehicle, error)
	StampReminded(ctx context.Context, id string, at time.Time) error
}

type Config struct {
	// RunAt is the local wall-clock time of the daily scan, as HH:MM.
	RunAt              string
	OverdueAfterMonths int
	Dedupe             bool
}

type Scanner struct {
	vehicles VehicleStore
	notifier notification.Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func New(cfg Config, vehicles VehicleStore, notifier notification.Notifier, logger *slog.Logger) *Scanner {
	if cfg.OverdueAfterMonths <= 0 {
		cfg.OverdueAfterMonths = 4
	}
	if cfg.RunAt == "" {
		cfg.RunAt = "00:00"
	}
	return &Scanner{
		vehicles: vehicles,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Cutoff is the latest baseline that still counts as overdue at now.
func (s *Scanner) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, -s.cfg.OverdueAfterMonths, 0)
}

// Scan notifies the driver of every overdue vehicle once and returns how
// many reminders went out.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (int, error) {
	cutoff := s.Cutoff(now)
	candidates, err := s.vehicles.ListMaintenanceCandidates(ctx, cutoff, s.cfg.Dedupe)
	if err != nil {
		return 0, fmt.Errorf("list overdue vehicles: %w", err)
	}

	sent := 0
	for _, v := range candidates {
		if v.AssignedDriver == nil {
			continue
		}
		// The store filters by baseline too; its clock comparison may be
		// coarser than ours.
		if v.MaintenanceBaseline().After(cutoff) {
			s.logger.Debug("vehicle not yet due", "vehicle_id", v.ID, "baseline", v.MaintenanceBaseline())
			continue
		}

		message := fmt.Sprintf("Your assigned vehicle (%s) is due for scheduled maintenance.", v.PlateNumber)
		if err := s.notifier.Notify(ctx, notification.ToUser(v.AssignedDriver.DriverID), message, notification.TypeMaintenance); err != nil {
			s.logger.Error("failed to send maintenance reminder",
				"vehicle_id", v.ID,
				"driver_id", v.AssignedDriver.DriverID,
				"error", err)
			continue
		}
		sent++

		if s.cfg.Dedupe {
			if err := s.vehicles.StampReminded(ctx, v.ID, now); err != nil {
				s.logger.Error("failed to stamp maintenance reminder", "vehicle_id", v.ID, "error", err)
			}
		}
	}

	s.logger.Info("maintenance scan finished",
		"cutoff", cutoff,
		"candidates", len(candidates),
		"reminders_sent", sent)
	return sent, nil
}

// NextRun returns the first RunAt time strictly after now.
func (s *Scanner) NextRun(now time.Time) (time.Time, error) {
	at, err := time.Parse("15:04", s.cfg.RunAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid run_at %q: %w", s.cfg.RunAt, err)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// Run scans once a day at RunAt until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("maintenance scanner started",
		"run_at", s.cfg.RunAt,
		"overdue_after_months", s.cfg.OverdueAfterMonths,
		"dedupe", s.cfg.Dedupe)

	for {
		next, err := s.NextRun(s.now())
		if err != nil {
			return err
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("maintenance scanner stopped")
			return nil
		case <-timer.C:
		}

		if _, err := s.Scan(ctx, s.now()); err != nil {
			s.logger.Error("maintenance scan failed", "error", err)
		}
	}
}
