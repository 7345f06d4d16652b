// Package realtime pushes session changes to the views a profile has open.
package realtime

import (
	"context"
	"sync"

	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/metrics"

	"github.com/google/uuid"
)

// MessageTypeReload tells a view to reload itself from scratch.
const MessageTypeReload = "reload"

// Message is one frame sent to a view.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Subscription is one open view.
type Subscription struct {
	ID        string
	ProfileID string
	C         <-chan Message

	send chan Message
}

// Hub fans messages out to every view of a profile.
type Hub struct {
	mu         sync.RWMutex
	profiles   map[string]map[string]*Subscription
	bufferSize int
	log        logger.Logger
}

// NewHub creates a hub. bufferSize bounds the backlog of each view; frames beyond it
// are dropped for that view.
func NewHub(bufferSize int, log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		profiles:   make(map[string]map[string]*Subscription),
		bufferSize: bufferSize,
		log:        log.WithComponent("realtime"),
	}
}

// Subscribe opens a view for profileID.
func (h *Hub) Subscribe(profileID string) *Subscription {
	ch := make(chan Message, h.bufferSize)
	sub := &Subscription{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		C:         ch,
		send:      ch,
	}

	h.mu.Lock()
	views, ok := h.profiles[profileID]
	if !ok {
		views = make(map[string]*Subscription)
		h.profiles[profileID] = views
	}
	views[sub.ID] = sub
	h.mu.Unlock()

	metrics.RealtimeConnected(1)
	h.log.WithFields(map[string]interface{}{"profile_id": profileID, "subscriber_id": sub.ID}).Debug("View subscribed")
	return sub
}

// Unsubscribe closes the view. Calling it twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	views := h.profiles[sub.ProfileID]
	_, ok := views[sub.ID]
	if ok {
		delete(views, sub.ID)
		if len(views) == 0 {
			delete(h.profiles, sub.ProfileID)
		}
		close(sub.send)
	}
	h.mu.Unlock()

	if ok {
		metrics.RealtimeConnected(-1)
	}
}

// Broadcast sends msg to every view of profileID and returns how many received it.
func (h *Hub) Broadcast(profileID string, msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, sub := range h.profiles[profileID] {
		select {
		case sub.send <- msg:
			delivered++
		default:
			h.log.WithFields(map[string]interface{}{
				"profile_id":    profileID,
				"subscriber_id": id,
				"type":          msg.Type,
			}).Warn("View backlog full, dropping message")
		}
	}
	return delivered
}

// Connections returns the number of open views of profileID.
func (h *Hub) Connections(profileID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles[profileID])
}

// Reload asks every open view of profileID to reload. A profile with no open views is
// not an error.
func (h *Hub) Reload(_ context.Context, profileID string) error {
	n := h.Broadcast(profileID, Message{Type: MessageTypeReload})
	h.log.WithFields(map[string]interface{}{"profile_id": profileID, "views": n}).Info("Requested client reload")
	return nil
}

// Forward relays session events from bus to the views of the profile they concern.
func (h *Hub) Forward(bus eventbus.EventBusInterface) {
	bus.Subscribe("session.*", func(_ context.Context, event eventbus.Event) error {
		if event.ProfileID() == "" {
			return nil
		}
		h.Broadcast(event.ProfileID(), Message{Type: event.Type(), Data: event.Data()})
		return nil
	})
}

// Close drops every view.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for profileID, views := range h.profiles {
		for _, sub := range views {
			close(sub.send)
			metrics.RealtimeConnected(-1)
		}
		delete(h.profiles, profileID)
	}
}
