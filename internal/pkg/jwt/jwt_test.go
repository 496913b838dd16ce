package jwt

import (
	"errors"
	"testing"
)

const testSecret = "test-secret-key"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "somchai", "MANAGER", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Username != "somchai" {
		t.Errorf("username = %q, want somchai", claims.Username)
	}
	if claims.Role != "MANAGER" {
		t.Errorf("role = %q, want MANAGER", claims.Role)
	}
	if claims.Issuer != "queuehub-backend" {
		t.Errorf("issuer = %q, want queuehub-backend", claims.Issuer)
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "somchai", "EMPLOYEE", testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "somchai", "EMPLOYEE", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ValidateAccessToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	if _, err := ValidateAccessToken("not-a-jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "session-abc", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.TokenID != "session-abc" {
		t.Errorf("token_id = %q, want session-abc", claims.TokenID)
	}
}

func TestRefreshAndAccessTokensAreNotInterchangeable(t *testing.T) {
	refresh, err := GenerateRefreshToken(42, "session-abc", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := ValidateAccessToken(refresh, testSecret)
	if err != nil {
		return
	}
	// A refresh token parsed as an access token must not yield a usable role.
	if claims.Role != "" || claims.Username != "" {
		t.Fatalf("refresh token validated with role=%q username=%q", claims.Role, claims.Username)
	}
}
