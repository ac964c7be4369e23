package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	SessionCookie     = "session_id"

	sessionPrefix = "session:"
)

// SessionStore keeps staff sessions in Redis as session:<id> -> user id.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// TTL is how long a session lives after creation.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create stores a new session for userID and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	err := s.rdb.Set(ctx, sessionPrefix+sid, userID, s.ttl).Err()
	return sid, err
}

// Get returns the user id for a session, or "" if not found or expired.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, sessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionPrefix+sessionID).Err()
}
