// Package realtime fans payload-free change notifications out to connected
// views. Subscribers learn that something changed and re-fetch; they never
// receive row data.
package realtime

import "sync"

// Event names the table and action that changed. No row payload on purpose:
// the contract is "re-fetch", not "patch".
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
}

// Hub tracks per-user subscriptions. Each subscription holds a single-slot
// buffer, so a burst of changes collapses into one pending notification.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one user's changes. The returned cancel
// func must be called when the view unmounts.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish notifies one user's subscribers. A subscriber whose slot is already
// full keeps its pending event; the new one is dropped as redundant.
func (h *Hub) Publish(userID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// BroadcastAll notifies every subscriber; used for the periodic refresh tick.
func (h *Hub) BroadcastAll(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for ch := range set {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
