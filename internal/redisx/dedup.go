package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Deduper records webhook event IDs so replayed deliveries can be
// recognized.
type Deduper struct {
	client *redis.Client
}

func NewDeduper(client *redis.Client) *Deduper {
	return &Deduper{client: client}
}

// Seen reports whether the event ID was already recorded.
func (d *Deduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, WebhookDedupKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed records the event ID and reports whether this call was
// the first to see it.
func (d *Deduper) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, WebhookDedupKey(eventID), "1", WebhookDedupTTL).Result()
}
