package utils

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenPairRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	pair, err := GenerateTokenPair(userID, "rider", "secret")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type %q, want Bearer", pair.TokenType)
	}

	for _, token := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := ValidateToken(token, "secret")
		if err != nil {
			t.Fatalf("ValidateToken failed: %v", err)
		}
		if claims.UserID != userID.Hex() {
			t.Errorf("claims user %q, want %q", claims.UserID, userID.Hex())
		}
		if claims.Role != "rider" {
			t.Errorf("claims role %q, want rider", claims.Role)
		}
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := GenerateTokenPair(primitive.NewObjectID(), "rider", "secret")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	if _, err := ValidateToken(pair.AccessToken, "other-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
