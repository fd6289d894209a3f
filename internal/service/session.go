package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodbridge/backend/internal/types"
)

// SessionStore keeps the server-side record behind each issued token, so a
// session can be revoked before the token expires.
type SessionStore interface {
	Put(ctx context.Context, sessionID string, identity types.Identity, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (types.Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

// ErrSessionNotFound means the session was revoked or never existed.
var ErrSessionNotFound = errors.New("session not found")

// RedisSessionStore stores sessions in Redis with a TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, identity types.Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sessionID), data, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (types.Identity, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return types.Identity{}, ErrSessionNotFound
	}
	if err != nil {
		return types.Identity{}, fmt.Errorf("failed to read session: %w", err)
	}
	var identity types.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return types.Identity{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return identity, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// MemorySessionStore is the fallback when Redis is not configured. Used in
// tests and single-instance development setups.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	identity  types.Identity
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, identity types.Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{identity: identity, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (types.Identity, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.expiresAt) {
		return types.Identity{}, ErrSessionNotFound
	}
	return sess.identity, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
