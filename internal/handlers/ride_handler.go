package handlers

import (
	"errors"

	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// CreateRide opens a new shared ride with the caller as first member.
func (h *RideHandler) CreateRide(c *gin.Context) {
	var request validators.CreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), userID, &request)
	if err != nil {
		if errors.Is(err, validators.ErrAddressRequired) {
			utils.ValidationErrorResponse(c, err.Error())
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.CreatedResponse(c, "Ride created", ride)
}

// ListAvailableRides returns open rides the caller can still join.
func (h *RideHandler) ListAvailableRides(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rides, err := h.rideService.ListAvailableRides(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Available rides", rides)
}

// JoinRide claims the ride's open slot first-come-first-serve. Losing
// the race is an expected outcome and maps to a conflict, distinct from
// the ride not existing at all.
func (h *RideHandler) JoinRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride id")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ride, err := h.rideService.JoinRide(c.Request.Context(), rideID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRideNotFound):
			utils.NotFoundResponse(c, "Ride")
		case errors.Is(err, services.ErrRideAlreadyClaimed):
			utils.ConflictResponse(c, "RIDE_ALREADY_CLAIMED", err.Error())
		case errors.Is(err, services.ErrRideNotOpen):
			utils.ConflictResponse(c, "RIDE_NOT_OPEN", err.Error())
		case errors.Is(err, services.ErrAlreadyMember):
			utils.ConflictResponse(c, "ALREADY_MEMBER", err.Error())
		case errors.Is(err, services.ErrJoinConflict):
			utils.ConflictResponse(c, "JOIN_CONFLICT", err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Ride joined", ride)
}

// ListMyRides returns rides the caller created or joined.
func (h *RideHandler) ListMyRides(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rides, err := h.rideService.ListMyRides(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "My rides", rides)
}

// GetRide returns one ride to its creator, a member, or an admin.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride id")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), rideID, userID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRideNotFound):
			utils.NotFoundResponse(c, "Ride")
		case errors.Is(err, services.ErrRideAccessDenied):
			utils.ForbiddenResponse(c, err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Ride details", ride)
}
