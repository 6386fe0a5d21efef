package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

const loggerContextKey contextKey = "logger"

// WithRequestLogger stores a request-scoped logger in the context,
// pre-tagged with the method, path, request ID and, for signed-in
// customers, the user ID. Handlers pull it back out with GetLogger so
// their log lines correlate without re-plumbing fields. Runs after
// RequestID and WithUser.
func WithRequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if id := GetRequestID(r.Context()); id != "" {
				logger = logger.With(slog.String("request_id", id))
			}
			if user := GetUserFromContext(r.Context()); user != nil {
				logger = logger.With(slog.String("user_id", user.ID.String()))
			}

			ctx := context.WithValue(r.Context(), loggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request-scoped logger, the fallback when one
// was given, or slog.Default().
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0]
	}
	return slog.Default()
}
