package auth

import (
	"net/http"
	"strings"
)

const AccessTokenCookie = "access_token"

// ExtractAccessToken returns the bearer token from the Authorization header,
// falling back to the access_token cookie used by the web client.
func ExtractAccessToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
