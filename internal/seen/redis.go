package seen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL bounds how long a mark lives when no TTL is configured.
const DefaultRedisTTL = 365 * 24 * time.Hour

// Redis keeps marks as "seen:<subject>:<flag>" keys with a TTL, so stale
// anonymous visitors age out on their own.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rc := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rc, nil
}

func (s *Redis) key(subject, flag string) string {
	p := s.Prefix
	if p == "" {
		p = "seen"
	}
	return p + ":" + subject + ":" + flag
}

// Seen implements Store.
func (s *Redis) Seen(ctx context.Context, subject, flag string) (bool, error) {
	if err := check(subject, flag); err != nil {
		return false, err
	}
	_, err := s.Client.Get(ctx, s.key(subject, flag)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSeen implements Store. SET NX keeps the first mark's TTL.
func (s *Redis) MarkSeen(ctx context.Context, subject, flag string) error {
	if err := check(subject, flag); err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return s.Client.SetNX(ctx, s.key(subject, flag), "1", ttl).Err()
}
