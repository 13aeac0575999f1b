package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/fleet-management/internal/core/events"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds report figures until they expire or a write that changes
// them purges it. Subjects are not cached, so a deleted vehicle or a
// demoted driver is noticed on the next read.
type Cache struct {
	entries *expirable.LRU[string, any]
	logger  *slog.Logger
}

func NewCache(size int, ttl time.Duration, logger *slog.Logger) *Cache {
	if size <= 0 {
		size = 512
	}
	return &Cache{
		entries: expirable.NewLRU[string, any](size, nil, ttl),
		logger:  logger,
	}
}

func (c *Cache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *Cache) add(key string, value any) {
	if c == nil {
		return
	}
	c.entries.Add(key, value)
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}

// InvalidationEvents are the domain events after which cached reports may
// be stale.
var InvalidationEvents = []string{
	events.EventTypeFuelLogApproved,
	events.EventTypeTripApproved,
	events.EventTypeMaintenanceCreated,
}

// Subscribe purges the cache whenever one of InvalidationEvents is
// published. The purge runs inline, so a read that follows the publishing
// request never sees the old figures.
func (c *Cache) Subscribe(bus *events.EventBus) {
	for _, eventType := range InvalidationEvents {
		bus.SubscribeInline(eventType, c.handle)
	}
}

func (c *Cache) handle(ctx context.Context, event events.Event) error {
	c.logger.Debug("report cache purged", "event_type", event.EventType(), "entries", c.entries.Len())
	c.Purge()
	return nil
}
