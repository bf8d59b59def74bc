package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is the wire envelope for every broadcast. There is no
// server-side room concept: every connected client receives every event
// and filters by name. Chat events carry the chatroom id in the name
// itself so clients can subscribe selectively.
type Event struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type Hub struct {
	cfg        *Config
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub(cfg *Config) *Hub {
	return &Hub{
		cfg:        cfg.withDefaults(),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.sendToAll(message)
		}
	}
}

// Broadcast fans an event out to every connected client. It never
// blocks the caller: if the hub's queue is full the event is dropped
// and logged, since delivery is fire-and-forget by contract.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Event{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      payload,
	})
	if err != nil {
		log.Printf("Error marshaling event %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("Broadcast queue full, dropping event %s", event)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	log.Printf("Client connected: %s", client.UserID.Hex())
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Printf("Client disconnected: %s", client.UserID.Hex())
	}
}

func (h *Hub) sendToAll(data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the connection rather than the hub.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
