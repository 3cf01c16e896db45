package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/model"
)

// AttemptStore persists in-progress attempt snapshots keyed by
// (exam, candidate) so a reconnect does not lose progress.
//
// Load never fails on missing or corrupt data; both are treated as "no
// prior attempt". Save overwrites the previous snapshot. Clear is
// idempotent.
type AttemptStore interface {
	Load(ctx context.Context, examID, candidateID string) (*model.AttemptState, error)
	Save(ctx context.Context, examID, candidateID string, state model.AttemptState) error
	Clear(ctx context.Context, examID, candidateID string) error
}

// RedisAttemptStore stores one JSON snapshot per attempt key.
type RedisAttemptStore struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisAttemptStore creates an AttemptStore backed by Redis. A zero ttl
// means snapshots never expire.
func NewRedisAttemptStore(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisAttemptStore {
	return &RedisAttemptStore{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "attempt_store").Logger(),
	}
}

// Load returns the last saved snapshot, or nil if none exists. A snapshot
// that fails to decode is dropped and treated as nil so the candidate gets
// a fresh attempt instead of a fatal error.
func (s *RedisAttemptStore) Load(ctx context.Context, examID, candidateID string) (*model.AttemptState, error) {
	key := config.CacheKey.AttemptKey(examID, candidateID)

	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt snapshot: %w", err)
	}

	var state model.AttemptState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.log.Warn().Err(err).
			Str("exam_id", examID).
			Str("candidate_id", candidateID).
			Msg("Corrupt attempt snapshot, starting fresh")
		_ = s.rdb.Del(ctx, key).Err()
		return nil, nil
	}

	if state.Answers == nil {
		state.Answers = make(map[string]string)
	}

	return &state, nil
}

// Save overwrites the snapshot for the key.
func (s *RedisAttemptStore) Save(ctx context.Context, examID, candidateID string, state model.AttemptState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal attempt snapshot: %w", err)
	}

	key := config.CacheKey.AttemptKey(examID, candidateID)
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set attempt snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot. Clearing a key that does not exist is a no-op.
func (s *RedisAttemptStore) Clear(ctx context.Context, examID, candidateID string) error {
	key := config.CacheKey.AttemptKey(examID, candidateID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del attempt snapshot: %w", err)
	}
	return nil
}
