package common

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey int

const userIDKey ctxKey = iota

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

// AuthMiddleware requires a bearer credential on every request it wraps.
// No header is 401, a malformed header is 401, a credential the identity
// provider rejects is 403.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				WriteErrorMessage(w, http.StatusUnauthorized, "authorization header required")
				return
			}

			// Bearer <token>
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteErrorMessage(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			uid, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				logger.Debug("token verification failed", zap.String("path", r.URL.Path), zap.Error(err))
				WriteErrorMessage(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}
