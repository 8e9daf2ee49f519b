package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 7 * 24 * time.Hour

type RedisPersistence struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPersistence(client *redis.Client, ttl time.Duration) *RedisPersistence {
	return &RedisPersistence{Client: client, TTL: ttl}
}

func key(session string) string {
	return "cart:" + session
}

func (p *RedisPersistence) Load(ctx context.Context, session string) (Cart, bool, error) {
	raw, err := p.Client.Get(ctx, key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, err
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, false, err
	}
	// Totals are derived, never trusted from storage.
	return build(c.Items), true, nil
}

func (p *RedisPersistence) Save(ctx context.Context, session string, c Cart) error {
	if c.IsEmpty() {
		return p.Delete(ctx, session)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return p.Client.Set(ctx, key(session), payload, p.TTL).Err()
}

func (p *RedisPersistence) Delete(ctx context.Context, session string) error {
	return p.Client.Del(ctx, key(session)).Err()
}
