package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from the separately-hosted frontend.
		return true
	},
}

const writeWait = 10 * time.Second

// Event is the wire frame sent to every connected client.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// subscription is a client-sent control frame for joining or leaving a
// per-issue room.
type subscription struct {
	Action string `json:"action"` // "join-issue" or "leave-issue"
	Issue  string `json:"issue"`
}

type envelope struct {
	room string // empty means global broadcast
	data []byte
}

// Hub owns the registry of live websocket connections and their room
// subscriptions. Delivery is best-effort and at-most-once: a client that is
// disconnected at emission time misses the event, and clients are expected
// to re-fetch full state after reconnecting.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]map[string]bool
	out     chan envelope
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]map[string]bool),
		out:     make(chan envelope, 256),
	}
}

// Run drains the outbound queue, fanning each event out to every matching
// connection. Connections that fail a write are dropped immediately.
func (h *Hub) Run() {
	for msg := range h.out {
		h.mu.Lock()
		for conn, rooms := range h.clients {
			if msg.room != "" && !rooms[msg.room] {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.enqueue("", event, payload)
}

// BroadcastToRoom sends an event only to clients subscribed to the room.
func (h *Hub) BroadcastToRoom(room, event string, payload interface{}) {
	h.enqueue(room, event, payload)
}

func (h *Hub) enqueue(room, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		log.Println("realtime: marshal event:", err)
		return
	}
	select {
	case h.out <- envelope{room: room, data: data}:
	default:
		// Queue full: drop rather than block the request path.
		log.Println("realtime: dropped event", event)
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request and runs the connection's read loop,
// handling join-issue / leave-issue control frames until the client goes
// away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("realtime: upgrade:", err)
		return
	}

	h.register(conn)
	defer h.unregister(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var sub subscription
		if err := json.Unmarshal(data, &sub); err != nil || sub.Issue == "" {
			continue
		}
		switch sub.Action {
		case "join-issue":
			h.join(conn, sub.Issue)
		case "leave-issue":
			h.leave(conn, sub.Issue)
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = make(map[string]bool)
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) join(conn *websocket.Conn, room string) {
	h.mu.Lock()
	if rooms, ok := h.clients[conn]; ok {
		rooms[room] = true
	}
	h.mu.Unlock()
}

func (h *Hub) leave(conn *websocket.Conn, room string) {
	h.mu.Lock()
	if rooms, ok := h.clients[conn]; ok {
		delete(rooms, room)
	}
	h.mu.Unlock()
}
