package middleware

import (
	"encoding/json"
	"net/http"

	"agrimarket-be/internal/auth"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/user"
	"agrimarket-be/internal/utils"

	"go.uber.org/zap"
)

// AuthMiddleware resolves the caller from a bearer token. Requests without a
// token pass through anonymously; a token that fails to verify is rejected.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := user.ParseJWT(secret, tokenStr)
			if err != nil || claims.UserID == 0 {
				logger.FromCtx(r.Context()).Info("rejected access token", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers outside roles
// with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if len(roles) > 0 {
				role := utils.GetUserRoleFromContext(r.Context())
				allowed := false
				for _, want := range roles {
					if role == want {
						allowed = true
						break
					}
				}
				if !allowed {
					writeError(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
