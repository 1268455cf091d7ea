package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/ports"
	"github.com/aerolux/concierge-admin/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	defaultSendTimeout = 5 * time.Second
)

// Dispatcher routes vendor notifications to a fixed set of workers using
// consistent hashing on the vendor id, so notifications for one vendor are
// delivered in the order they were enqueued.
type Dispatcher struct {
	workers     []chan ports.Notification
	sender      ports.NotificationSender
	sendTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.NotificationSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:     make([]chan ports.Notification, numWorkers),
		sender:      sender,
		sendTimeout: defaultSendTimeout,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// WithSendTimeout overrides the per-delivery timeout.
func (d *Dispatcher) WithSendTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.sendTimeout = timeout
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands n to the worker responsible for its vendor. It never blocks:
// when that worker's buffer is full the notification is dropped and false is
// returned.
func (d *Dispatcher) Enqueue(n ports.Notification) bool {
	idx := d.shardIndex(n.VendorID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsEnqueuedTotal.WithLabelValues("queued").Inc()
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.NotificationsEnqueuedTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("kind", n.Kind).
			Str("vendor_id", n.VendorID).
			Int("worker_id", idx).
			Msg("notification queue full, dropping")
		return false
	}
}

// shardIndex maps a vendor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(vendorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(vendorID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, n ports.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, n)
	metrics.NotificationSendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(n.Kind, "error").Inc()
		d.log.Error().Err(err).
			Str("kind", n.Kind).
			Str("vendor_id", n.VendorID).
			Int("worker_id", worker).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsSentTotal.WithLabelValues(n.Kind, "ok").Inc()
	d.log.Info().
		Str("kind", n.Kind).
		Str("vendor_id", n.VendorID).
		Msg("notification delivered")
}
