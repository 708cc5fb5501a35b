package utils

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "tokengen@test.com", "customer")
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	if strings.Count(token, ".") != 2 {
		t.Errorf("expected JWT with 2 dots, got %q", token)
	}
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "validate@test.com", "admin")
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "validate@test.com" {
		t.Errorf("expected email validate@test.com, got %s", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
	if claims.Issuer != "reelfake-backend" {
		t.Errorf("expected issuer 'reelfake-backend', got %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("expected token id to be set")
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	userID := uuid.New()
	refresh, err := GenerateRefreshToken(userID, "refresh@test.com", "customer")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(refresh); err == nil {
		t.Error("expected refresh token to be rejected as access token")
	}

	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("expected refresh token to validate, got: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user_id %s, got %s", userID, claims.UserID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Email:  "expired@test.com",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "reelfake-backend",
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(expiredToken); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "reelfake-backend",
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(forged); err == nil {
		t.Fatal("expected error for forged token")
	}
}
