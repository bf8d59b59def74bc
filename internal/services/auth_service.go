package services

import (
	"context"
	"errors"
	"fmt"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/utils"
	"carpool/internal/validators"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
)

type AuthService interface {
	Signup(ctx context.Context, request *validators.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateProfileRequest) (*models.User, error)
}

type AuthResult struct {
	Token *utils.TokenPair   `json:"token"`
	User  models.UserSummary `json:"user"`
	Role  models.UserRole    `json:"role"`
}

type authService struct {
	userRepo  interfaces.UserRepository
	cache     CacheService
	jwtSecret string
	logger    *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, cache CacheService, jwtSecret string, log *logger.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (s *authService) Signup(ctx context.Context, request *validators.SignupRequest) (*AuthResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	// Only rider and admin exist; anything else collapses to rider.
	role := models.UserRoleRider
	if request.Role == string(models.UserRoleAdmin) {
		role = models.UserRoleAdmin
	}

	identifier := request.Email
	if identifier == "" {
		identifier = request.Phone
	}
	if _, err := s.userRepo.GetByEmailOrPhone(ctx, identifier); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), utils.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         utils.SanitizeString(request.Name),
		Email:        request.Email,
		Phone:        request.Phone,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("user registered")

	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkLoginAttempts(ctx, request.EmailOrPhone); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmailOrPhone(ctx, request.EmailOrPhone)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.recordFailedLogin(ctx, request.EmailOrPhone)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		s.recordFailedLogin(ctx, request.EmailOrPhone)
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateProfileRequest) (*models.User, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if request.Name != "" {
		updates["name"] = utils.SanitizeString(request.Name)
	}
	if request.Email != "" {
		updates["email"] = request.Email
	}
	if request.Phone != "" {
		updates["phone"] = request.Phone
	}
	if v := request.IDVerification; v != nil {
		if v.AadharNumber != "" {
			updates["id_verification.aadhar.number"] = v.AadharNumber
		}
		if v.AadharDocument != "" {
			updates["id_verification.aadhar.document"] = v.AadharDocument
		}
		if v.PANNumber != "" {
			updates["id_verification.pan_card.number"] = v.PANNumber
		}
		if v.PANDocument != "" {
			updates["id_verification.pan_card.document"] = v.PANDocument
		}
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *authService) issueTokens(user *models.User) (*AuthResult, error) {
	pair, err := utils.GenerateTokenPair(user.ID, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResult{
		Token: pair,
		User:  user.Summary(),
		Role:  user.Role,
	}, nil
}

func (s *authService) checkLoginAttempts(ctx context.Context, identifier string) error {
	if s.cache == nil {
		return nil
	}

	var attempts int64
	key := fmt.Sprintf("login_attempts:%s", identifier)
	if err := s.cache.Get(ctx, key, &attempts); err != nil {
		return nil
	}
	if attempts >= utils.MaxLoginAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *authService) recordFailedLogin(ctx context.Context, identifier string) {
	if s.cache == nil {
		return
	}

	key := fmt.Sprintf("login_attempts:%s", identifier)
	if _, err := s.cache.Increment(ctx, key, 1, utils.LoginLockoutTime); err != nil {
		s.logger.WithError(err).Warn("failed to record login attempt")
	}
}
