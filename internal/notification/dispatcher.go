package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Publisher pushes a stored notification to an out-of-band channel.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

type DeliveryJob struct {
	Ctx          context.Context
	Notification *Notification
}

type Worker struct {
	ID     int
	Logger *slog.Logger
}

func NewWorker(id int, logger *slog.Logger) *Worker {
	return &Worker{ID: id, Logger: logger}
}

// Start consumes jobs until the channel is closed, so closing the queue
// drains it.
func (w *Worker) Start(wg *sync.WaitGroup, jobs <-chan DeliveryJob, processFunc func(DeliveryJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for job := range jobs {
			w.Logger.Debug("worker delivering notification", "worker_id", w.ID, "notification_id", job.Notification.ID)
			processFunc(job)
		}
		w.Logger.Debug("worker shutting down", "worker_id", w.ID)
	}()
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxRetries  uint64
	RetryBase   time.Duration
	AdminPolicy string
}

// Dispatcher resolves targets into notification records and persists them
// through a worker pool. A record is never dropped silently: a full queue or
// a stopped dispatcher falls back to synchronous delivery, and exhausted
// retries are logged at error level.
type Dispatcher struct {
	repo      Repository
	directory Directory
	publisher Publisher
	logger    *slog.Logger
	cfg       DispatcherConfig

	jobQueue chan DeliveryJob
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	once     sync.Once
}

func NewDispatcher(cfg DispatcherConfig, repo Repository, directory Directory, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 100 * time.Millisecond
	}
	if cfg.AdminPolicy == "" {
		cfg.AdminPolicy = internal.AdminPolicySingleAdmin
	}

	d := &Dispatcher{
		repo:      repo,
		directory: directory,
		logger:    logger,
		cfg:       cfg,
		jobQueue:  make(chan DeliveryJob, cfg.QueueSize),
	}
	d.startWorkerPool()
	return d
}

// WithPublisher attaches an optional push channel.
func (d *Dispatcher) WithPublisher(p Publisher) *Dispatcher {
	d.publisher = p
	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			NewWorker(i, d.logger).Start(&d.wg, d.jobQueue, d.deliver)
		}
		d.logger.Info("notification worker pool started",
			"workers", d.cfg.Workers,
			"queue_size", d.cfg.QueueSize,
			"admin_policy", d.cfg.AdminPolicy)
	})
}

// Notify builds the records for target and hands them to the worker pool.
// It fails only when recipients cannot be resolved.
func (d *Dispatcher) Notify(ctx context.Context, target Target, message string, typ Type) error {
	records, err := d.resolve(ctx, target, message, typ)
	if err != nil {
		return err
	}

	jobCtx := context.WithoutCancel(ctx)
	for _, n := range records {
		d.enqueue(DeliveryJob{Ctx: jobCtx, Notification: n})
	}
	return nil
}

func (d *Dispatcher) enqueue(job DeliveryJob) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.closed {
		select {
		case d.jobQueue <- job:
			return
		default:
			d.logger.Warn("notification queue full, delivering inline", "notification_id", job.Notification.ID)
		}
	}
	d.deliver(job)
}

func (d *Dispatcher) resolve(ctx context.Context, target Target, message string, typ Type) ([]*Notification, error) {
	newRecord := func() *Notification {
		now := time.Now()
		return &Notification{
			ID:        uuid.NewString(),
			Message:   message,
			Type:      typ,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	switch target.Kind {
	case TargetUser:
		if target.UserID == "" {
			return nil, fmt.Errorf("notification target has no user id")
		}
		n := newRecord()
		recipient := target.UserID
		n.RecipientID = &recipient
		return []*Notification{n}, nil

	case TargetAdmins:
		if d.cfg.AdminPolicy == internal.AdminPolicyRoleBroadcast {
			n := newRecord()
			role := identity.RoleAdmin
			n.AudienceRole = &role
			return []*Notification{n}, nil
		}

		adminIDs, err := d.directory.AdminIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve admin recipients: %w", err)
		}
		if len(adminIDs) == 0 {
			d.logger.Warn("no admin to notify", "message", message, "type", typ)
			return nil, nil
		}
		if d.cfg.AdminPolicy == internal.AdminPolicySingleAdmin {
			adminIDs = adminIDs[:1]
		}

		records := make([]*Notification, 0, len(adminIDs))
		for _, id := range adminIDs {
			n := newRecord()
			recipient := id
			n.RecipientID = &recipient
			records = append(records, n)
		}
		return records, nil
	}

	return nil, fmt.Errorf("unknown notification target kind %d", target.Kind)
}

func (d *Dispatcher) deliver(job DeliveryJob) {
	backoff := retry.WithMaxRetries(d.cfg.MaxRetries, retry.NewExponential(d.cfg.RetryBase))

	err := retry.Do(job.Ctx, backoff, func(ctx context.Context) error {
		if err := d.repo.Create(ctx, job.Notification); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.logger.Error("notification lost after retries",
			"notification_id", job.Notification.ID,
			"type", job.Notification.Type,
			"message", job.Notification.Message,
			"error", err)
		return
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(job.Ctx, job.Notification); err != nil {
			d.logger.Warn("notification push failed",
				"notification_id", job.Notification.ID,
				"error", err)
		}
	}
}

// Shutdown stops accepting queued work and waits for the queue to drain.
// Later Notify calls deliver inline.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("shutting down notification dispatcher")
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
