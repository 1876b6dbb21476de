package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	seenLinksKey = "articles:seen_links"
	seenLinksTTL = 7 * 24 * time.Hour
)

// SeenLinkCache is a best-effort Redis set of links known to be persisted.
// Hits skip the Postgres existence query; any cache error degrades to the
// store lookup.
type SeenLinkCache struct {
	client *redis.Client
}

// NewSeenLinkCache creates a cache over the given Redis client.
func NewSeenLinkCache(client *redis.Client) *SeenLinkCache {
	return &SeenLinkCache{client: client}
}

// Contains reports which of the links are already cached as seen.
func (c *SeenLinkCache) Contains(ctx context.Context, links []string) (map[string]bool, error) {
	if len(links) == 0 {
		return map[string]bool{}, nil
	}
	members := make([]interface{}, len(links))
	for i, l := range links {
		members[i] = l
	}
	flags, err := c.client.SMIsMember(ctx, seenLinksKey, members...).Result()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(links))
	for i, flag := range flags {
		if flag {
			seen[links[i]] = true
		}
	}
	return seen, nil
}

// Add records links as persisted and refreshes the set TTL.
func (c *SeenLinkCache) Add(ctx context.Context, links []string) error {
	if len(links) == 0 {
		return nil
	}
	members := make([]interface{}, len(links))
	for i, l := range links {
		members[i] = l
	}
	if err := c.client.SAdd(ctx, seenLinksKey, members...).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, seenLinksKey, seenLinksTTL).Err()
}
