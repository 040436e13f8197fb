package auth

import (
	"testing"
	"time"

	"upline/config"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "upline",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 7, "jane", "jane@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "jane" || claims.Role != "user" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != "upline" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 7, "jane", "jane@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := testJWTConfig()
	other.AccessSecret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateRefreshToken(cfg, 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	userID, err := ParseRefreshToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 7, "jane", "jane@example.com", "user")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Signed with the access secret, so the refresh parser must refuse it.
	if _, err := ParseRefreshToken(cfg, token); err == nil {
		t.Fatal("expected error for access token on refresh path")
	}
}

func TestParseGarbage(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := ParseAccessToken(cfg, "not.a.token"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ParseRefreshToken(cfg, ""); err == nil {
		t.Fatal("expected error")
	}
}
