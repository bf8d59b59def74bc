package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler owns the hub and exposes it both as a gin endpoint and as the
// event publisher the services broadcast through.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(cfg *Config) *Handler {
	cfg = cfg.withDefaults()

	hub := NewHub(cfg)
	go hub.Run()

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			HandshakeTimeout:  cfg.HandshakeTimeout,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin:       checkOrigin(cfg.AllowedOrigins),
		},
	}
}

// Publish implements the services' EventPublisher.
func (h *Handler) Publish(event string, payload interface{}) {
	h.hub.Broadcast(event, payload)
}

// HandleWebSocket upgrades an authenticated request to a client
// connection. Authentication gates the connection only; once connected,
// a client receives every broadcast.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userObjectID, roleStr)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}
