package redisx

import (
	"fmt"
	"time"
)

// Key formats and their lifetimes.
const (
	// sessionKeyFormat stores one value under a customer session:
	// session:{sessionID}:{name}
	sessionKeyFormat = "session:%s:%s"

	// webhookDedupKeyFormat marks a webhook event as processed:
	// dedup:webhook:{eventID}
	webhookDedupKeyFormat = "dedup:webhook:%s"
)

const (
	// SessionTTL is refreshed on every write, so active carts never
	// expire mid-visit.
	SessionTTL = 30 * 24 * time.Hour

	// WebhookDedupTTL comfortably outlives the provider's retry
	// schedule.
	WebhookDedupTTL = 72 * time.Hour
)

// SessionKey builds the storage key for one named value in a session.
func SessionKey(sessionID, name string) string {
	return fmt.Sprintf(sessionKeyFormat, sessionID, name)
}

// WebhookDedupKey builds the processed marker key for a webhook event.
func WebhookDedupKey(eventID string) string {
	return fmt.Sprintf(webhookDedupKeyFormat, eventID)
}
