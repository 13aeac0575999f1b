package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/frahmantamala/fleet-management/internal/notification"
)

type Config struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Timeout     time.Duration
}

// Publisher pushes every stored notification to
// <prefix>/users/<recipient> or <prefix>/roles/<role>.
type Publisher struct {
	client pahomqtt.Client
	cfg    Config
	logger *slog.Logger
}

func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	logger.Info("mqtt publisher connected", "broker", cfg.BrokerURL, "topic_prefix", cfg.TopicPrefix)
	return newPublisherWithClient(client, cfg, logger), nil
}

func newPublisherWithClient(client pahomqtt.Client, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Publisher{client: client, cfg: cfg, logger: logger}
}

func (p *Publisher) Topic(n *notification.Notification) string {
	if n.RecipientID != nil {
		return fmt.Sprintf("%s/users/%s", p.cfg.TopicPrefix, *n.RecipientID)
	}
	if n.AudienceRole != nil {
		return fmt.Sprintf("%s/roles/%s", p.cfg.TopicPrefix, *n.AudienceRole)
	}
	return p.cfg.TopicPrefix + "/unaddressed"
}

func (p *Publisher) Publish(ctx context.Context, n *notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	token := p.client.Publish(p.Topic(n), p.cfg.QoS, false, payload)

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.cfg.Timeout):
		return fmt.Errorf("mqtt publish to %s timed out", p.Topic(n))
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
