package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/notification"
	notificationMongo "github.com/frahmantamala/fleet-management/internal/notification/mongo"
	notificationMQTT "github.com/frahmantamala/fleet-management/internal/notification/mqtt"
	notificationPostgres "github.com/frahmantamala/fleet-management/internal/notification/postgres"
	"github.com/frahmantamala/fleet-management/internal/transport/rest"
	"gorm.io/gorm"
)

// notificationStack is the dispatcher plus the store and push channel it
// was built over.
type notificationStack struct {
	Repo       notification.Repository
	Dispatcher *notification.Dispatcher
	// Check probes the store when it lives outside the main database.
	Check rest.Checker

	closers []func()
	logger  *slog.Logger
}

func newNotificationStack(ctx context.Context, cfg internal.NotificationConfig, db *gorm.DB, directory notification.Directory, lg *slog.Logger) (*notificationStack, error) {
	stack := &notificationStack{logger: lg}

	switch cfg.Store {
	case "mongo":
		client, err := notificationMongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect notification store: %w", err)
		}
		stack.closers = append(stack.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				lg.Error("mongo disconnect error", "error", err)
			}
		})

		repo := notificationMongo.NewNotificationRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			stack.Close()
			return nil, fmt.Errorf("failed to create notification indexes: %w", err)
		}
		stack.Repo = repo
		stack.Check = func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}
	default:
		stack.Repo = notificationPostgres.NewNotificationRepository(db)
	}

	stack.Dispatcher = notification.NewDispatcher(notification.DispatcherConfig{
		Workers:     cfg.Workers,
		QueueSize:   cfg.QueueSize,
		MaxRetries:  cfg.MaxRetries,
		RetryBase:   cfg.RetryBase,
		AdminPolicy: cfg.AdminPolicy,
	}, stack.Repo, directory, lg)

	if cfg.MQTT.Enabled {
		publisher, err := notificationMQTT.NewPublisher(notificationMQTT.Config{
			BrokerURL:   cfg.MQTT.BrokerURL,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
			Timeout:     cfg.MQTT.Timeout,
		}, lg)
		if err != nil {
			lg.Warn("mqtt push disabled", "broker", cfg.MQTT.BrokerURL, "error", err)
		} else {
			stack.Dispatcher.WithPublisher(publisher)
			stack.closers = append(stack.closers, publisher.Close)
		}
	}

	return stack, nil
}

// Close drains the dispatcher, then releases the store and push channel.
func (s *notificationStack) Close() {
	if s.Dispatcher != nil {
		s.Dispatcher.Shutdown()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
