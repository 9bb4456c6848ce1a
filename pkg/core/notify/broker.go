// Package notify delivers admin notifications to connected dashboard clients.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

const defaultBuffer = 16

// Broker fans notifications out to subscribers. Each application owns its
// own Broker; subscriptions end when the subscriber's context is done or
// its cancel func is called.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan domain.Notification
	nextID int
	buffer int
	now    func() time.Time
}

func NewBroker() *Broker {
	return &Broker{
		subs:   make(map[int]chan domain.Notification),
		buffer: defaultBuffer,
		now:    time.Now,
	}
}

// Subscribe registers a subscriber. The returned channel is closed once the
// subscription ends.
func (b *Broker) Subscribe(ctx context.Context) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel
}

// Publish delivers n to every subscriber without blocking. A subscriber
// whose buffer is full misses the notification.
func (b *Broker) Publish(n domain.Notification) {
	if n.At.IsZero() {
		n.At = b.now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
