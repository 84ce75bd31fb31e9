package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.GenerateViewerToken("operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.ViewerID != "operator" {
		t.Errorf("Expected viewer operator, got %s", claims.ViewerID)
	}
	if claims.Role != RoleViewer {
		t.Errorf("Expected role %s, got %s", RoleViewer, claims.Role)
	}
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).GenerateViewerToken("operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := NewTokenIssuer("two", time.Hour).ValidateToken(token); err == nil {
		t.Error("Expected validation to fail with a different secret")
	}
}

func TestTokenIssuer_RandomSecretWhenEmpty(t *testing.T) {
	a := NewTokenIssuer("", time.Hour)
	b := NewTokenIssuer("", time.Hour)

	token, err := a.GenerateViewerToken("operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := a.ValidateToken(token); err != nil {
		t.Errorf("Issuer rejected its own token: %v", err)
	}
	if _, err := b.ValidateToken(token); err == nil {
		t.Error("Two generated secrets must differ")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.GenerateViewerToken("operator")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.ValidateToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherRoles(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	claims := &JWTClaims{
		ViewerID: "device-1",
		Role:     "device",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := issuer.ValidateToken(token); err == nil {
		t.Error("Expected non-viewer token to be rejected")
	}
}
