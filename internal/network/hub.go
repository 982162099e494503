// Package network carries the websocket surfaces: the sync endpoint the
// character processes talk to, and the observer hub that streams world
// events to watchers.
package network

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/platform/logger"
)

// Hub fans world events out to observer connections. Observers are
// read-only; a slow observer is dropped rather than allowed to stall the
// broadcast.
type Hub struct {
	mu        sync.Mutex
	observers map[*observer]struct{}
	log       *logger.Logger
}

type observer struct {
	conn *websocket.Conn
	send chan events.WorldEvent
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		observers: make(map[*observer]struct{}),
		log:       log,
	}
}

// Publish delivers ev to every connected observer. Safe to register as an
// event log listener.
func (h *Hub) Publish(ev events.WorldEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for o := range h.observers {
		select {
		case o.send <- ev:
		default:
			// Backed-up observer; close it out.
			close(o.send)
			delete(h.observers, o)
		}
	}
}

// ObserverCount returns the number of connected observers.
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

func (h *Hub) attach(conn *websocket.Conn) *observer {
	o := &observer{conn: conn, send: make(chan events.WorldEvent, 64)}
	h.mu.Lock()
	h.observers[o] = struct{}{}
	h.mu.Unlock()
	return o
}

func (h *Hub) detach(o *observer) {
	h.mu.Lock()
	if _, ok := h.observers[o]; ok {
		close(o.send)
		delete(h.observers, o)
	}
	h.mu.Unlock()
}

// serve pumps events to one observer until the channel closes or a write
// fails.
func (h *Hub) serve(ctx context.Context, o *observer) {
	defer o.conn.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-o.send:
			if !ok {
				return
			}
			if err := o.conn.WriteJSON(ev); err != nil {
				h.detach(o)
				return
			}
		}
	}
}
