package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const unreadTTL = 5 * time.Minute

// Client caches unread-notification counts. All methods are nil-safe: with
// no Redis configured callers silently fall through to the database.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func unreadKey(userID uint) string {
	return "notifications:unread:" + strconv.FormatUint(uint64(userID), 10)
}

func (c *Client) GetUnreadCount(ctx context.Context, userID uint) (int64, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *Client) SetUnreadCount(ctx context.Context, userID uint, count int64) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, unreadKey(userID), count, unreadTTL)
}

func (c *Client) InvalidateUnread(ctx context.Context, userID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, unreadKey(userID))
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
