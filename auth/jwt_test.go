package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateTokenNotConfigured(t *testing.T) {
	if _, err := ValidateToken("", "token"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestIssuer(t *testing.T) {
	got, err := Issuer("https://auth.example.com/neondb/auth")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://auth.example.com" {
		t.Errorf("issuer = %q", got)
	}
	if _, err := Issuer("not a url"); err == nil {
		t.Error("expected an error for a relative URL")
	}
}

func TestClaimsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		wantID   string
		wantName string
	}{
		{"sub and full name", jwt.MapClaims{"sub": "u1", "name": "Ana Maria Lopez"}, "u1", "Ana"},
		{"id fallback", jwt.MapClaims{"id": "u2", "name": "  Ben  "}, "u2", "Ben"},
		{"empty", jwt.MapClaims{}, "", "Jugador"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserIDFromClaims(tt.claims); got != tt.wantID {
				t.Errorf("UserIDFromClaims = %q, want %q", got, tt.wantID)
			}
			if got := FirstNameFromClaims(tt.claims); got != tt.wantName {
				t.Errorf("FirstNameFromClaims = %q, want %q", got, tt.wantName)
			}
		})
	}
}
