package handlers

import (
	"errors"
	"net/http"

	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var request validators.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), &request)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			utils.ConflictResponse(c, "USER_EXISTS", err.Error())
		case errors.Is(err, validators.ErrNamePasswordRequired),
			errors.Is(err, validators.ErrContactRequired),
			errors.Is(err, validators.ErrInvalidEmail),
			errors.Is(err, validators.ErrPasswordTooShort):
			utils.ValidationErrorResponse(c, err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.CreatedResponse(c, "Account created", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_CREDENTIALS", err.Error())
		case errors.Is(err, services.ErrTooManyAttempts):
			utils.ErrorResponse(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", err.Error())
		case errors.Is(err, validators.ErrCredentialsRequired):
			utils.ValidationErrorResponse(c, err.Error())
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Logged in", result)
}

// Me returns the caller's own profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Profile", user)
}

// UpdateMe updates the caller's own profile fields.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var request validators.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &request)
	if err != nil {
		switch {
		case errors.Is(err, validators.ErrInvalidEmail):
			utils.ValidationErrorResponse(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			utils.NotFoundResponse(c, "User")
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Profile updated", user)
}
