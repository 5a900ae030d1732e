// Package notify is the global, non-blocking side-channel stores push
// user-visible success/error feedback into, decoupled from action return
// values. Subscribers (a toast renderer, a test harness) receive a copy of
// every notification; a lagging subscriber loses messages rather than
// blocking an action.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/storefront-go/metrics"
)

// Kind classifies a notification for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one toast-worthy message.
type Notification struct {
	ID      string
	Kind    Kind
	Message string
	// DedupKey, when non-empty, suppresses identical notifications published
	// within the dedup window. Duplicates pass through freely otherwise.
	DedupKey string
	At       time.Time
}

const (
	subscriberBuffer = 64
	dedupWindow      = 2 * time.Second
)

// Bus fans notifications out to subscribers. The zero value is not usable;
// construct with NewBus.
type Bus struct {
	mu       sync.Mutex
	subs     map[int]chan Notification
	nextSub  int
	lastSeen map[string]time.Time // DedupKey -> last publish
	now      func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subs:     make(map[int]chan Notification),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function. The channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan Notification, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers n to every subscriber without blocking. Fire-and-forget:
// there is no acknowledgement and no error path.
func (b *Bus) Publish(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = b.now()
	}

	b.mu.Lock()
	if n.DedupKey != "" {
		if last, ok := b.lastSeen[n.DedupKey]; ok && n.At.Sub(last) < dedupWindow {
			b.mu.Unlock()
			return
		}
		b.lastSeen[n.DedupKey] = n.At
	}
	subs := make([]chan Notification, 0, len(b.subs))
	for _, ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	metrics.NotificationsTotal.WithLabelValues(string(n.Kind)).Inc()
	for _, ch := range subs {
		select {
		case ch <- n:
		default:
			metrics.NotificationsDroppedTotal.Inc()
		}
	}
}

// Success publishes a success toast.
func (b *Bus) Success(message string) {
	b.Publish(Notification{Kind: KindSuccess, Message: message})
}

// Error publishes a failure toast.
func (b *Bus) Error(message string) {
	b.Publish(Notification{Kind: KindError, Message: message})
}

// Info publishes an informational toast.
func (b *Bus) Info(message string) {
	b.Publish(Notification{Kind: KindInfo, Message: message})
}
