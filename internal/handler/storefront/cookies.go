// Package storefront holds the customer-facing JSON handlers.
package storefront

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName identifies the anonymous shopping session. The
// cart follows this cookie, not the login, so browsing works before
// authentication.
const SessionCookieName = "tannery_session"

const sessionCookieMaxAge = 30 * 24 * time.Hour

// ensureSession returns the request's session ID, minting and setting
// a new cookie when the request has none.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	sessionID := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}
