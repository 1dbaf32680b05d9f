package realtime

import (
	"sync"

	"learnhub/models"
)

// Publisher delivers a freshly created notification to any live session of
// the recipient. Delivery is best effort; persistence is the source of truth.
type Publisher interface {
	PublishNotification(userID int64, n *models.Notification)
}

// Hub keeps in-memory subscribers grouped by recipient. It is process-local;
// the redis bridge replays cross-instance events into it. The mutex makes
// subscribe, unsubscribe and delivery mutually exclusive, so a channel is
// only closed once no publisher can still reach it.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan *models.Notification]struct{}
}

// NewHub constructs a Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan *models.Notification]struct{}),
	}
}

// Subscribe registers a session for the given recipient and returns the
// delivery channel plus an unsubscribe function to call on disconnect.
// The channel is closed by unsubscribe, after it has been removed from the
// registry, so readers can range over it.
func (h *Hub) Subscribe(userID int64) (<-chan *models.Notification, func()) {
	ch := make(chan *models.Notification, 16)

	h.mu.Lock()
	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[chan *models.Notification]struct{})
		h.subscribers[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subscribers, userID)
			}
			h.mu.Unlock()
			// No publisher holds ch past this point.
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Publish sends a notification to every live session of the recipient.
// Sessions that cannot keep up are skipped so producers never block.
func (h *Hub) Publish(userID int64, n *models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- n:
		default:
			// drop if subscriber is slow
		}
	}
}
