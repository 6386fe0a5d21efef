package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// Identity headers set by the authenticating reverse proxy in front of
// the service. The storefront itself does not do authentication.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"

	// RoleOperator marks back-office staff allowed on admin routes.
	RoleOperator = "operator"
)

// User is the authenticated caller as asserted by the proxy.
type User struct {
	ID   uuid.UUID
	Role string
}

// WithUser resolves the identity headers into the request context.
// Requests without a valid user ID pass through anonymous; route
// guards decide what anonymity is allowed to reach.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(UserIDHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user := &User{
			ID:   id,
			Role: r.Header.Get(UserRoleHeader),
		}
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated user, or nil.
func GetUserFromContext(ctx context.Context) *User {
	if user, ok := ctx.Value(UserContextKey).(*User); ok {
		return user
	}
	return nil
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOperator rejects requests that are not from back-office
// staff. Anonymous callers get 401, authenticated non-operators 403.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			respondUnauthorized(w, r)
			return
		}
		if user.Role != RoleOperator {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
