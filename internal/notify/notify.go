// Package notify implements the ephemeral notification center. Notifications
// appear through a sink and auto-dismiss after a TTL.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one ephemeral message.
type Notification struct {
	ID      int       // Monotonically increasing per center
	Kind    Kind      // success or error
	Message string    // Display text
	ShownAt time.Time // Time the notification appeared
}

// Sink receives show and dismiss events. The host UI implements this.
type Sink interface {
	Show(n Notification)
	Dismiss(id int)
}

// Center owns the active notifications and their dismiss timers.
type Center struct {
	sink   Sink
	ttl    time.Duration
	logger zerolog.Logger

	mu     sync.Mutex
	nextID int
	active map[int]Notification
	timers map[int]*time.Timer
}

// NewCenter creates a notification center. TTL 0 falls back to 5 seconds.
func NewCenter(sink Sink, ttl time.Duration, logger zerolog.Logger) *Center {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Center{
		sink:   sink,
		ttl:    ttl,
		logger: logger.With().Str("component", "notify").Logger(),
		active: make(map[int]Notification),
		timers: make(map[int]*time.Timer),
	}
}

// Success shows a success notification.
func (c *Center) Success(message string) {
	c.show(KindSuccess, message)
}

// Error shows an error notification.
func (c *Center) Error(message string) {
	c.show(KindError, message)
}

// Active returns the currently shown notifications.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	return out
}

// Dismiss removes a notification before its TTL expires.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	removed := c.removeLocked(id)
	c.mu.Unlock()

	if removed {
		c.sink.Dismiss(id)
	}
}

// Close dismisses everything and stops all timers.
func (c *Center) Close() {
	c.mu.Lock()
	ids := make([]int, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	for _, id := range ids {
		c.removeLocked(id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		c.sink.Dismiss(id)
	}
}

func (c *Center) show(kind Kind, message string) {
	c.mu.Lock()
	c.nextID++
	n := Notification{
		ID:      c.nextID,
		Kind:    kind,
		Message: message,
		ShownAt: time.Now(),
	}
	c.active[n.ID] = n
	c.timers[n.ID] = time.AfterFunc(c.ttl, func() {
		c.Dismiss(n.ID)
	})
	c.mu.Unlock()

	c.logger.Debug().Str("kind", string(kind)).Str("message", message).Msg("notification shown")
	c.sink.Show(n)
}

// removeLocked removes one notification and stops its timer. Caller holds
// the mutex; the sink is notified after the lock is released.
func (c *Center) removeLocked(id int) bool {
	if _, ok := c.active[id]; !ok {
		return false
	}
	delete(c.active, id)
	if timer := c.timers[id]; timer != nil {
		timer.Stop()
		delete(c.timers, id)
	}
	return true
}
