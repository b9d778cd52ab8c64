package handler

import (
	"sync"

	"pulseboard/internal/widget"
)

// FeedEvent is one live-feed frame: a resolved widget batch for a
// conversation.
type FeedEvent struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Widgets []widget.Widget `json:"widgets,omitempty"`
}

// Hub fans resolved widget batches out to the websocket subscribers of
// each conversation. Slow subscribers drop frames rather than block the
// pipeline.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan FeedEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan FeedEvent]struct{})}
}

// Subscribe registers a listener for one conversation. The returned
// cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(conversationID string) (<-chan FeedEvent, func()) {
	ch := make(chan FeedEvent, 16)
	h.mu.Lock()
	set, ok := h.subs[conversationID]
	if !ok {
		set = make(map[chan FeedEvent]struct{})
		h.subs[conversationID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[conversationID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, conversationID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a widget batch to every subscriber of the conversation.
func (h *Hub) Publish(conversationID string, widgets []widget.Widget) {
	ev := FeedEvent{Type: "widgets", ID: conversationID, Widgets: widgets}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[conversationID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
