package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when no auth base URL is set.
var ErrNotConfigured = errors.New("auth base URL is not set")

var (
	jwksMu    sync.Mutex
	jwksCache = map[string]keyfunc.Keyfunc{}
)

// keyfuncFor returns the JWKS keyfunc for baseURL, creating it once.
// keyfunc refreshes the key set in the background.
func keyfuncFor(baseURL string) (keyfunc.Keyfunc, error) {
	jwksMu.Lock()
	defer jwksMu.Unlock()
	if k, ok := jwksCache[baseURL]; ok {
		return k, nil
	}
	k, err := keyfunc.NewDefault([]string{baseURL + "/.well-known/jwks.json"})
	if err != nil {
		return nil, err
	}
	jwksCache[baseURL] = k
	return k, nil
}

// ValidateToken validates an EdDSA JWT against the JWKS published under
// baseURL and returns the claims. The issuer must be baseURL's origin.
func ValidateToken(baseURL, tokenString string) (jwt.MapClaims, error) {
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	issuer, err := Issuer(baseURL)
	if err != nil {
		return nil, err
	}
	jwks, err := keyfuncFor(baseURL)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, jwks.Keyfunc,
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{"EdDSA"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Issuer returns the expected "iss" claim for baseURL: its scheme and host.
func Issuer(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", baseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// FirstNameFromClaims returns the first word of the "name" claim, or a fallback.
func FirstNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "Jugador"
	}
	return parts[0]
}

// UserIDFromClaims returns the user id from claims ("sub" or "id").
func UserIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
