// Package live pushes publish events to connected websocket clients so
// recipe lists can refresh without polling.
package live

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"forkful/hooks"
)

type Notice struct {
	Event string `json:"event"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// ServeWS upgrades the connection and keeps it registered until the client
// goes away. The feed is one-way; inbound messages are drained and dropped.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) Broadcast(notice Notice) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(notice); err != nil {
			log.Printf("live: write: %v", err)
		}
	}
}

// PublishHook broadcasts whenever a recipe becomes visible: created already
// published, or transitioned to published by an update or the sweep.
func (h *Hub) PublishHook() hooks.Handler {
	return func(ev hooks.Event) {
		switch ev.Op {
		case hooks.OpCreate:
			if ev.After != nil && ev.After.IsPublished {
				h.Broadcast(Notice{Event: "published", ID: ev.ID, Name: ev.After.Name})
			}
		case hooks.OpUpdate:
			if ev.Before != nil && ev.After != nil && !ev.Before.IsPublished && ev.After.IsPublished {
				h.Broadcast(Notice{Event: "published", ID: ev.ID, Name: ev.After.Name})
			}
		}
	}
}
