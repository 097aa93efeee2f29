package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agromarket/backend/models"

	"github.com/redis/go-redis/v9"
)

// sessionCart is the JSON blob stored per anonymous session.
type sessionCart struct {
	SessionID string             `json:"session_id"`
	Entries   []models.CartEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// redisCartBackend holds anonymous carts in Redis under a session-scoped
// key with a TTL, so abandoned carts expire on their own.
type redisCartBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartBackend(client *redis.Client, ttl time.Duration) CartBackend {
	return &redisCartBackend{client: client, ttl: ttl}
}

func (b *redisCartBackend) key(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (b *redisCartBackend) Get(ctx context.Context, owner models.CartOwner) ([]models.CartEntry, error) {
	if owner.SessionID == "" {
		return nil, nil
	}

	data, err := b.client.Get(ctx, b.key(owner.SessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart sessionCart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return cart.Entries, nil
}

func (b *redisCartBackend) Save(ctx context.Context, owner models.CartOwner, entries []models.CartEntry) error {
	if owner.SessionID == "" {
		return nil
	}

	cart := sessionCart{
		SessionID: owner.SessionID,
		Entries:   entries,
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, b.key(owner.SessionID), data, b.ttl).Err()
}

func (b *redisCartBackend) Clear(ctx context.Context, owner models.CartOwner) error {
	if owner.SessionID == "" {
		return nil
	}
	return b.client.Del(ctx, b.key(owner.SessionID)).Err()
}
