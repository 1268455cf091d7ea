// Package broadcast fans inventory events out to live subscribers. Delivery
// is at-most-once: there is no replay and a subscriber that cannot keep up
// misses events.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/pkg/metrics"
)

const defaultBuffer = 64

// Subscription is a single live consumer. Events arrive on C until the
// subscription is closed by Hub.Unsubscribe or Hub.Close.
type Subscription struct {
	C        <-chan domain.InventoryEvent
	ch       chan domain.InventoryEvent
	vendorID string
}

// Hub implements ports.EventPublisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	log    zerolog.Logger
}

// NewHub creates a Hub whose subscribers buffer up to buffer events.
func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a consumer. A non-empty vendorID restricts delivery to
// events on that vendor's items.
func (h *Hub) Subscribe(vendorID string) *Subscription {
	ch := make(chan domain.InventoryEvent, h.buffer)
	sub := &Subscription{C: ch, ch: ch, vendorID: vendorID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	metrics.EventSubscribers.Inc()
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is safe.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
	metrics.EventSubscribers.Dec()
}

// Publish delivers event to every matching subscriber without blocking.
func (h *Hub) Publish(event domain.InventoryEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.vendorID != "" && sub.vendorID != event.VendorID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			metrics.EventsDroppedTotal.Inc()
			h.log.Debug().
				Str("event_type", event.Type).
				Str("item_id", event.ItemID).
				Msg("subscriber buffer full, dropping event")
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions are born closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
		metrics.EventSubscribers.Dec()
	}
}
