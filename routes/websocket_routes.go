package routes

import (
	"carpool/internal/middleware"
	"carpool/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes registers the broadcast socket endpoint. Every
// authenticated client receives every published event; filtering is a
// client concern.
func SetupWebSocketRoutes(r *gin.RouterGroup, wsHandler *websocket.Handler, jwtSecret string) {
	ws := r.Group("/ws")
	ws.Use(middleware.AuthRequired(jwtSecret))
	{
		ws.GET("", wsHandler.HandleWebSocket)
	}
}
