package auth

import (
	"testing"
	"time"

	"github.com/breaddesk/breaddesk-backend/pkg/config"
)

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "breaddesk",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := jwtConfig()
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: 7,
		Email:  "admin@breaddesk.test",
		JTI:    "session-1",
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected user id %d", claims.UserID)
	}
	if claims.Email != "admin@breaddesk.test" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.ID != "session-1" {
		t.Fatalf("unexpected jti %s", claims.ID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := jwtConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := jwtConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: 1})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestMintRejectsMissingUser(t *testing.T) {
	if _, err := MintAccessToken(jwtConfig(), time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}
