package handlers

import (
	"errors"

	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// GetChatroomForRide returns the ride's chatroom to its participants.
func (h *ChatHandler) GetChatroomForRide(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("rideId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride id")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	chatroom, err := h.chatService.GetChatroomForRide(c.Request.Context(), rideID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRideNotFound):
			utils.NotFoundResponse(c, "Ride")
		case errors.Is(err, services.ErrChatroomNotFound):
			utils.NotFoundResponse(c, "Chatroom")
		case errors.Is(err, services.ErrChatroomAccessDenied):
			utils.ForbiddenResponse(c, err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Chatroom", chatroom)
}

// PostMessage appends a message to the chatroom's log.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	chatroomID, err := primitive.ObjectIDFromHex(c.Param("chatroomId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid chatroom id")
		return
	}

	var request validators.PostMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if err := request.Validate(); err != nil {
		utils.ValidationErrorResponse(c, err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	chatroom, err := h.chatService.PostMessage(c.Request.Context(), chatroomID, userID, request.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			utils.ValidationErrorResponse(c, err.Error())
		case errors.Is(err, services.ErrChatroomNotFound):
			utils.NotFoundResponse(c, "Chatroom")
		case errors.Is(err, services.ErrChatroomAccessDenied):
			utils.ForbiddenResponse(c, err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Message sent", chatroom)
}

// ListMyChatrooms returns the caller's active chatrooms.
func (h *ChatHandler) ListMyChatrooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	chatrooms, err := h.chatService.ListMyChatrooms(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "My chatrooms", chatrooms)
}
