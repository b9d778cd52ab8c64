package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	feedWSWriteWait = 10 * time.Second
	feedWSPongWait  = 60 * time.Second
	feedWSPingEvery = (feedWSPongWait * 9) / 10
)

var feedWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// FeedHandler streams resolved widget batches for one conversation over a
// websocket. The client side is read-only; inbound frames only service the
// keepalive.
type FeedHandler struct {
	hub *Hub
}

func NewFeedHandler(hub *Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if id == "" {
		http.Error(w, "conversationId is required", http.StatusBadRequest)
		return
	}

	conn, err := feedWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(id)
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(feedWSPongWait)); err != nil {
		log.Printf("feed ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedWSPongWait))
	})

	// Reader drains control frames and unblocks on close.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case ev := <-events:
			if err := conn.SetWriteDeadline(time.Now().Add(feedWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(feedWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
