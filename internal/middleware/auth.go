package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/socialchef/edgewatch/internal/errors"
	"github.com/socialchef/edgewatch/internal/monitor"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware validates Supabase JWT tokens. Rejections are recorded as
// warning breadcrumbs so they show up next to any error captured later.
func AuthMiddleware(secret, supabaseURL string, mon *monitor.Monitor) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(strings.TrimSuffix(supabaseURL, "/")+"/auth/v1"),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string) {
				mon.Record(r.Context(), "auth", reason, monitor.LevelWarning, map[string]any{
					"path": r.URL.Path,
				})
				apperrors.WriteHTTP(w, apperrors.NewUnauthorizedError("Unauthorized: "+reason, "UNAUTHORIZED"))
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject("missing Authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				reject("invalid Authorization header format")
				return
			}

			token, err := parser.Parse(tokenString, keyFunc)
			if err != nil || !token.Valid {
				reject("invalid token")
				return
			}

			userID, err := token.Claims.GetSubject()
			if err != nil || userID == "" {
				reject("missing sub claim")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
