package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"savory-orders/internal/apperr"
	"savory-orders/order-svc/internal/domain"
)

type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{Client: client, TTL: ttl}
}

func sessionKey(intentID string) string {
	return "checkout:" + intentID
}

func (s *SessionStore) SaveSession(ctx context.Context, session domain.CheckoutSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(session.IntentID), payload, s.TTL).Err()
}

func (s *SessionStore) LoadSession(ctx context.Context, intentID string) (*domain.CheckoutSession, error) {
	raw, err := s.Client.Get(ctx, sessionKey(intentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("checkout session", intentID)
	}
	if err != nil {
		return nil, err
	}
	var session domain.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
