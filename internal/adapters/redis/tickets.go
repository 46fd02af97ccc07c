package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tickets keeps one-shot upload tokens with a TTL.
type Tickets struct{ c *redis.Client }

func NewTickets(c *redis.Client) *Tickets { return &Tickets{c: c} }

func ticketKey(token string) string { return "upload:" + token }

func (t *Tickets) Issue(ctx context.Context, token string, ttl time.Duration) error {
	return t.c.Set(ctx, ticketKey(token), "1", ttl).Err()
}

// Consume deletes the token; only the caller that actually removed it wins.
func (t *Tickets) Consume(ctx context.Context, token string) (bool, error) {
	n, err := t.c.Del(ctx, ticketKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
