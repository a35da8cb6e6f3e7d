package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"salonflow/models"
)

// ErrSessionNotFound signals a missing or expired session. The orchestrator
// treats store unavailability the same way and restarts the flow.
var ErrSessionNotFound = errors.New("booking session not found or expired")

// SessionStore is the narrow keyed store holding booking sessions. Keyed by
// customer so a returning customer always resumes their own conversation,
// regardless of which process serves the request.
type SessionStore interface {
	Get(ctx context.Context, customerID string) (*models.BookingSession, error)
	Save(ctx context.Context, session *models.BookingSession) error
	Delete(ctx context.Context, customerID string) error
}

const sessionKeyPrefix = "booking:session:"

// RedisSessionStore stores sessions as JSON values with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, customerID string) (*models.BookingSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+customerID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	session = models.MigrateSession(session)
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.BookingSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.CustomerID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, customerID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+customerID).Err()
}
