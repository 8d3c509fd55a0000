package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrSessionNotFound indicates the session id has no stored context.
var ErrSessionNotFound = errors.New("interview: session not found")

const sessionTTL = 24 * time.Hour

// SessionStore persists interview contexts between turns. Expiry is a
// policy of the store, not of the engine.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (Context, error)
	Put(ctx context.Context, c Context) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore stores contexts as JSON under a 24h TTL.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore builds a Redis-backed store. A zero ttl uses the
// default 24h policy.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("interview: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = sessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("leadlens.internal.interview.sessions")
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (Context, error) {
	ctx, span := s.tracer.Start(ctx, "interview.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Context{}, ErrSessionNotFound
		}
		span.RecordError(err)
		return Context{}, fmt.Errorf("interview: failed to load session: %w", err)
	}

	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		span.RecordError(err)
		return Context{}, fmt.Errorf("interview: failed to decode session: %w", err)
	}
	if c.Assessment == nil {
		c.Assessment = make(Assessment)
	}
	return c, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, c Context) error {
	ctx, span := s.tracer.Start(ctx, "interview.save_session")
	defer span.End()

	data, err := json.Marshal(c)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("interview: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(c.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("interview: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "interview.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("interview: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("interview:session:%s", id)
}

// MemorySessionStore keeps contexts in-process, for tests and local runs.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
	ttl      time.Duration
	now      func() time.Time
}

type storedSession struct {
	context   Context
	expiresAt time.Time
}

// NewMemorySessionStore builds an in-memory store with the same 24h expiry
// policy as the Redis store. A zero ttl disables expiry.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (Context, error) {
	s.mu.RLock()
	stored, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Context{}, ErrSessionNotFound
	}
	if !stored.expiresAt.IsZero() && s.now().After(stored.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return Context{}, ErrSessionNotFound
	}
	return stored.context.Clone(), nil
}

func (s *MemorySessionStore) Put(_ context.Context, c Context) error {
	stored := storedSession{context: c.Clone()}
	if s.ttl > 0 {
		stored.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.sessions[c.SessionID] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
