package usercache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wardenhq/blockwarden/internal/config"
	"github.com/wardenhq/blockwarden/internal/model"
)

// Cache stores actor snapshots in Redis keyed by actor id.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// cachedActor is the JSON shape stored under each key.
type cachedActor struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
	Followers int       `json:"followers"`
	SeenAt    time.Time `json:"seen_at"`
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{
		rdb:    rdb,
		ttl:    cfg.ActorTTL,
		logger: logger.With("component", "usercache"),
	}, nil
}

// Store writes the actor under "actor:<id>" with the configured TTL.
// Failures are logged and swallowed.
func (c *Cache) Store(ctx context.Context, actor model.RemoteActor) {
	if actor.ID == "" {
		return
	}
	entry := cachedActor{
		ID:        actor.ID,
		Handle:    actor.Handle,
		CreatedAt: actor.CreatedAt,
		Followers: actor.Followers,
		SeenAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("failed to marshal actor", "actor_id", actor.ID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key(actor.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache actor", "actor_id", actor.ID, "error", err)
	}
}

// Get returns the cached actor, or false when the key is absent or unreadable.
func (c *Cache) Get(ctx context.Context, actorID string) (model.RemoteActor, bool) {
	data, err := c.rdb.Get(ctx, key(actorID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("failed to read cached actor", "actor_id", actorID, "error", err)
		}
		return model.RemoteActor{}, false
	}
	var entry cachedActor
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("corrupt cache entry", "actor_id", actorID, "error", err)
		return model.RemoteActor{}, false
	}
	return model.RemoteActor{
		ID:        entry.ID,
		Handle:    entry.Handle,
		CreatedAt: entry.CreatedAt,
		Followers: entry.Followers,
	}, true
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func key(actorID string) string {
	return "actor:" + actorID
}
