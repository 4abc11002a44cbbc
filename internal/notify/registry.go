// Package notify holds the in-process connection registry used to push
// reminder notifications to live client streams.
package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is the payload delivered to a user's live connection when a
// reminder comes due.
type Notification struct {
	Type       string    `json:"type"`
	ReminderID uuid.UUID `json:"reminder_id"`
	TaskID     uuid.UUID `json:"task_id"`
	TaskTitle  string    `json:"task_title"`
	Message    string    `json:"message"`
	RemindAt   time.Time `json:"remind_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// channelBuffer bounds how many undrained notifications a connection may
// hold before sends are dropped.
const channelBuffer = 16

// Registry maps a user to at most one live outgoing channel. All operations
// are serialized under one mutex; this is a low-contention per-user map, not
// a hot path. Process-local only: running multiple processes would need an
// external pub/sub layer instead.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]chan Notification
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]chan Notification)}
}

// Connect registers a fresh channel for the user, tearing down any existing
// one first. The returned channel is closed when a newer connection replaces
// it, which tells the old stream handler to stop reading.
func (r *Registry) Connect(userID uuid.UUID) <-chan Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.conns[userID]; ok {
		close(old)
	}
	ch := make(chan Notification, channelBuffer)
	r.conns[userID] = ch
	return ch
}

// Disconnect removes the user's registration if present.
func (r *Registry) Disconnect(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.conns[userID]; ok {
		close(ch)
		delete(r.conns, userID)
	}
}

// Send enqueues a notification for the user. Returns false when the user has
// no live connection or the connection's buffer is full; neither case is an
// error to the caller.
func (r *Registry) Send(userID uuid.UUID, n Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.conns[userID]
	if !ok {
		return false
	}
	select {
	case ch <- n:
		return true
	default:
		log.Printf("notify: dropping reminder %s for user %s, connection buffer full", n.ReminderID, userID)
		return false
	}
}

// IsConnected reports whether the user has a live connection.
func (r *Registry) IsConnected(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[userID]
	return ok
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
