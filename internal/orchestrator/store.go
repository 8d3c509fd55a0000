package orchestrator

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

	"github.com/leadlens-ai/leadlens/internal/interview"
)

const stateTTL = 24 * time.Hour

// StateStore persists orchestration state between turns.
type StateStore interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Put(ctx context.Context, s State) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStateStore stores orchestration state as JSON under a 24h TTL.
type RedisStateStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStateStore builds a Redis-backed store. A zero ttl uses the
// default 24h policy.
func NewRedisStateStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStateStore {
	if client == nil {
		panic("orchestrator: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = stateTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("leadlens.internal.orchestrator.state")
	}
	return &RedisStateStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

func (s *RedisStateStore) Get(ctx context.Context, sessionID string) (State, error) {
	ctx, span := s.tracer.Start(ctx, "orchestrator.load_state")
	defer span.End()

	data, err := s.redis.Get(ctx, stateKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, interview.ErrSessionNotFound
		}
		span.RecordError(err)
		return State{}, fmt.Errorf("orchestrator: failed to load state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return State{}, fmt.Errorf("orchestrator: failed to decode state: %w", err)
	}
	if st.Assessment == nil {
		st.Assessment = make(interview.Assessment)
	}
	return st, nil
}

func (s *RedisStateStore) Put(ctx context.Context, st State) error {
	ctx, span := s.tracer.Start(ctx, "orchestrator.save_state")
	defer span.End()

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("orchestrator: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(st.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("orchestrator: failed to persist state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "orchestrator.delete_state")
	defer span.End()

	if err := s.redis.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("orchestrator: failed to delete state: %w", err)
	}
	return nil
}

func stateKey(id string) string {
	return fmt.Sprintf("interview:state:%s", id)
}

// MemoryStateStore keeps orchestration state in-process, for tests and local
// runs.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]storedState
	ttl    time.Duration
}

type storedState struct {
	state     State
	expiresAt time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = stateTTL
	}
	return &MemoryStateStore{
		states: make(map[string]storedState),
		ttl:    ttl,
	}
}

func (s *MemoryStateStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	stored, ok := s.states[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(stored.expiresAt) {
		return State{}, interview.ErrSessionNotFound
	}
	return stored.state.Clone(), nil
}

func (s *MemoryStateStore) Put(_ context.Context, st State) error {
	s.mu.Lock()
	s.states[st.SessionID] = storedState{
		state:     st.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
	return nil
}
