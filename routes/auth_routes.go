package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers signup/login and the self-service profile
// endpoints.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	me := r.Group("/auth")
	me.Use(middleware.AuthRequired(jwtSecret))
	{
		me.GET("/me", authHandler.Me)
		me.PUT("/me", authHandler.UpdateMe)
	}
}
