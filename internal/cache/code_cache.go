package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeIndex is a Redis-backed code -> session id lookup. It is a fast
// path only: the session store keeps the authoritative mapping and
// misses fall through to it.
type CodeIndex interface {
	Set(ctx context.Context, code, sessionID string) error
	Resolve(ctx context.Context, code string) (string, error)
	Exists(ctx context.Context, code string) (bool, error)
}

type codeIndex struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodeIndex creates a Redis code index.
func NewCodeIndex(client *redis.Client) CodeIndex {
	return &codeIndex{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (c *codeIndex) key(code string) string {
	return fmt.Sprintf("predict:code:%s", code)
}

func (c *codeIndex) Set(ctx context.Context, code, sessionID string) error {
	return c.client.Set(ctx, c.key(code), sessionID, c.ttl).Err()
}

// Resolve returns the session id for a code, or "" on a cache miss.
func (c *codeIndex) Resolve(ctx context.Context, code string) (string, error) {
	id, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *codeIndex) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}
