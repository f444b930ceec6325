// Package notification broadcasts playback notifications to remote watchers.
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/ytmusic/internal/domain/track"
)

// bufferSize is the number of notifications a slow subscriber may lag behind.
const bufferSize = 16

// Notification represents one playback notification.
type Notification struct {
	SequenceNo uint64
	Type       string // e.g., "track_started", "queue_exhausted", "error"
	State      string
	Track      *track.Track // nil when no track is concerned
	Message    string
	Time       time.Time
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id      string
	ch      chan Notification
	dropped int
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns its ID and notification channel.
// The channel is closed by Unsubscribe or Close.
func (m *Manager) Subscribe() (string, <-chan Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id: id,
		ch: make(chan Notification, bufferSize),
	}
	m.subscriptions[id] = sub
	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", id, len(m.subscriptions))
	return id, sub.ch
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return
	}
	delete(m.subscriptions, subscriptionID)
	close(sub.ch)
	zlog.Debug().Msgf("notification: unsubscribed: id=%s dropped=%d", subscriptionID, sub.dropped)
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Broadcast sends a notification to all subscribers and returns the sequence number it was given.
// It never blocks: a subscriber whose buffer is full misses the notification.
func (m *Manager) Broadcast(n Notification) uint64 {
	n.SequenceNo = m.NextSequenceNo()
	if n.Time.IsZero() {
		n.Time = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- n:
		default:
			sub.dropped++
			zlog.Debug().Msgf("notification: subscriber lagging, dropped: id=%s seq=%d", sub.id, n.SequenceNo)
		}
	}
	return n.SequenceNo
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes the manager and removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sub := range m.subscriptions {
		close(sub.ch)
		delete(m.subscriptions, id)
	}
}
