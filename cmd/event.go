package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/fleet-management/internal/core/events"
	"github.com/frahmantamala/fleet-management/internal/report"
	"github.com/frahmantamala/fleet-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the in-process event bus: publish fleet events and watch which handlers react.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: fmt.Sprintf("Publish a test event to a local event bus wired like the server's.\nKnown types: %s, %s, %s, %s",
		events.EventTypeTripApproved, events.EventTypeFuelLogApproved,
		events.EventTypeMaintenanceCreated, events.EventTypeMaintenanceCompleted),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData      string
	eventVehicleID string
	eventDriverID  string
)

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	// mirror the server's subscribers so their reaction is logged
	report.NewCache(16, 0, lg).Subscribe(eventBus)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	testEvent := events.NewEvent(eventType, map[string]interface{}{
		"message":    eventData,
		"vehicle_id": eventVehicleID,
		"driver_id":  eventDriverID,
		"source":     "cli-command",
	})

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	if err := eventBus.PublishSync(ctx, testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		return err
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().StringVar(&eventVehicleID, "vehicle", "", "Vehicle id carried by the event")
	publishEventCmd.Flags().StringVar(&eventDriverID, "driver", "", "Driver id carried by the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
