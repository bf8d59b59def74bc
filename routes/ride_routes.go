package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes registers the shared-ride endpoints. All of them
// require a rider (or admin) caller; authorization happens here, never
// at event delivery.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, jwtSecret string) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret), middleware.RiderRequired())
	{
		rides.POST("/", rideHandler.CreateRide)
		rides.GET("/available", rideHandler.ListAvailableRides)
		rides.GET("/my-rides", rideHandler.ListMyRides)
		rides.POST("/:id/join", rideHandler.JoinRide)
		rides.GET("/:id", rideHandler.GetRide)
	}
}
