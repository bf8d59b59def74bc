package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carpool/internal/models"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"golang.org/x/crypto/bcrypt"
)

// mockCache is an in-memory CacheService for the login throttle tests.
type mockCache struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMockCache() *mockCache {
	return &mockCache{counters: make(map[string]int64)}
}

func (c *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.counters[key]
	if !ok {
		return errors.New("cache miss")
	}
	if p, ok := dest.(*int64); ok {
		*p = value
		return nil
	}
	return errors.New("unsupported destination")
}

func (c *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *mockCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.counters, key)
	}
	return nil
}

func (c *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.counters[key]
	return ok, nil
}

func (c *mockCache) Increment(ctx context.Context, key string, delta int64, expiration time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key] += delta
	return c.counters[key], nil
}

func newAuthServiceForTest(cache CacheService) (AuthService, *mockUserRepository) {
	userRepo := newMockUserRepository()
	service := NewAuthService(userRepo, cache, "test-secret", newTestLogger())
	return service, userRepo
}

func TestSignup_CreatesRiderAndIssuesTokens(t *testing.T) {
	service, userRepo := newAuthServiceForTest(nil)

	result, err := service.Signup(context.Background(), &validators.SignupRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if result.Role != models.UserRoleRider {
		t.Errorf("expected rider role, got %s", result.Role)
	}
	if result.Token == nil || result.Token.AccessToken == "" {
		t.Fatal("expected a signed access token")
	}

	claims, err := utils.ValidateToken(result.Token.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != result.User.ID.Hex() {
		t.Errorf("token user %q, want %q", claims.UserID, result.User.ID.Hex())
	}
	if claims.Role != string(models.UserRoleRider) {
		t.Errorf("token role %q, want rider", claims.Role)
	}

	stored, err := userRepo.GetByEmailOrPhone(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatalf("user was not persisted: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "secret1" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestSignup_UnknownRoleCollapsesToRider(t *testing.T) {
	service, _ := newAuthServiceForTest(nil)

	result, err := service.Signup(context.Background(), &validators.SignupRequest{
		Name:     "Asha",
		Phone:    "9876543210",
		Password: "secret1",
		Role:     "driver",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if result.Role != models.UserRoleRider {
		t.Errorf("unknown role must collapse to rider, got %s", result.Role)
	}
}

func TestSignup_DuplicateIdentifier(t *testing.T) {
	service, userRepo := newAuthServiceForTest(nil)
	userRepo.AddUser(&models.User{Name: "Asha", Email: "asha@example.com"})

	_, err := service.Signup(context.Background(), &validators.SignupRequest{
		Name:     "Imposter",
		Email:    "asha@example.com",
		Password: "secret1",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	service, _ := newAuthServiceForTest(nil)

	cases := []struct {
		name    string
		request *validators.SignupRequest
		wantErr error
	}{
		{"no name", &validators.SignupRequest{Password: "secret1", Email: "a@b.com"}, validators.ErrNamePasswordRequired},
		{"no contact", &validators.SignupRequest{Name: "Asha", Password: "secret1"}, validators.ErrContactRequired},
		{"bad email", &validators.SignupRequest{Name: "Asha", Email: "nope", Password: "secret1"}, validators.ErrInvalidEmail},
		{"short password", &validators.SignupRequest{Name: "Asha", Email: "a@b.com", Password: "abc"}, validators.ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Signup(context.Background(), tc.request); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	service, userRepo := newAuthServiceForTest(nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	userRepo.AddUser(&models.User{
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Role:         models.UserRoleRider,
	})

	result, err := service.Login(context.Background(), &validators.LoginRequest{
		EmailOrPhone: "asha@example.com",
		Password:     "secret1",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.User.Name != "Asha" {
		t.Errorf("unexpected user %q", result.User.Name)
	}
}

func TestLogin_WrongPasswordIsUniformError(t *testing.T) {
	service, userRepo := newAuthServiceForTest(nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	userRepo.AddUser(&models.User{
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
	})

	// Wrong password and unknown user yield the same error.
	if _, err := service.Login(context.Background(), &validators.LoginRequest{
		EmailOrPhone: "asha@example.com",
		Password:     "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := service.Login(context.Background(), &validators.LoginRequest{
		EmailOrPhone: "nobody@example.com",
		Password:     "whatever",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_ThrottlesAfterRepeatedFailures(t *testing.T) {
	cache := newMockCache()
	service, userRepo := newAuthServiceForTest(cache)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	userRepo.AddUser(&models.User{
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
	})

	for i := 0; i < utils.MaxLoginAttempts; i++ {
		if _, err := service.Login(context.Background(), &validators.LoginRequest{
			EmailOrPhone: "asha@example.com",
			Password:     "wrong",
		}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Even the correct password is rejected while locked out.
	if _, err := service.Login(context.Background(), &validators.LoginRequest{
		EmailOrPhone: "asha@example.com",
		Password:     "secret1",
	}); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestUpdateProfile_IDVerificationPaths(t *testing.T) {
	service, userRepo := newAuthServiceForTest(nil)

	user := &models.User{Name: "Asha", Email: "asha@example.com"}
	userRepo.AddUser(user)

	updated, err := service.UpdateProfile(context.Background(), user.ID, &validators.UpdateProfileRequest{
		IDVerification: &validators.IDVerificationInput{
			AadharNumber:   "1234-5678-9012",
			AadharDocument: "https://files.example.com/aadhar.jpg",
		},
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.ID != user.ID {
		t.Errorf("expected profile of %s, got %s", user.ID.Hex(), updated.ID.Hex())
	}
}
