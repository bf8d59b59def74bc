package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes registers the chatroom endpoints.
func SetupChatRoutes(r *gin.RouterGroup, chatHandler *handlers.ChatHandler, jwtSecret string) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthRequired(jwtSecret))
	{
		chat.GET("/ride/:rideId", chatHandler.GetChatroomForRide)
		chat.GET("/my-chatrooms", chatHandler.ListMyChatrooms)
		chat.POST("/chatroom/:chatroomId/message", chatHandler.PostMessage)
	}
}
