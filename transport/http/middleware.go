package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"secure-chat/auth"
	"secure-chat/errors"

	"github.com/go-chi/chi/v5/middleware"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

type contextKeyUserID struct{}

// GetUserID returns the caller id set by RequireAuth, or "".
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeyUserID{}).(string)
	if !ok {
		return ""
	}
	return userID
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the token's
// user id in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "Unauthorized access - missing token",
					"request_id", middleware.GetReqID(ctx))
				writeError(w, errors.ErrUnauthenticated)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "Unauthorized access - invalid token",
					"request_id", middleware.GetReqID(ctx),
					"error", err)
				writeError(w, errors.ErrUnauthenticated)
				return
			}
			ctx = context.WithValue(ctx, contextKeyUserID{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
