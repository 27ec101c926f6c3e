package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// EventHub fans session events out to WebSocket clients. A snapshot
// source, when set, is sent to each client as soon as it connects.
type EventHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*sync.Mutex
	snapshot func() any
}

// NewEventHub creates an EventHub. snapshot may be nil.
func NewEventHub(snapshot func() any) *EventHub {
	return &EventHub{
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		snapshot: snapshot,
	}
}

// ServeHTTP handles WebSocket upgrade requests on /api/events.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	lock := &sync.Mutex{}
	if h.snapshot != nil {
		if msg, err := json.Marshal(envelope{Type: "state", Data: h.snapshot()}); err == nil {
			write(conn, lock, msg)
		}
	}

	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

type envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Publish sends a typed message to every connected client. Slow or
// broken clients are dropped on write failure.
func (h *EventHub) Publish(kind string, data any) {
	msg, err := json.Marshal(envelope{Type: kind, Data: data, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Printf("events: marshal %s: %v", kind, err)
		return
	}

	h.mu.RLock()
	var dead []*websocket.Conn
	for conn, lock := range h.clients {
		if err := write(conn, lock, msg); err != nil {
			dead = append(dead, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range dead {
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func write(conn *websocket.Conn, lock *sync.Mutex, msg []byte) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
