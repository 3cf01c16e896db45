// Package record is the boundary to the external result-recording
// collaborator. The engine hands every SubmissionResult here exactly once;
// delivery beyond this boundary is best-effort and never blocks the
// candidate-facing state machine.
package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/model"
)

// ResultRecorder accepts a completed attempt's result.
type ResultRecorder interface {
	Record(ctx context.Context, result *model.SubmissionResult) error
}

// RedisQueueRecorder enqueues results onto the persistence queue consumed
// by the result worker.
type RedisQueueRecorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisQueueRecorder creates a queue-backed ResultRecorder.
func NewRedisQueueRecorder(rdb *redis.Client, log zerolog.Logger) *RedisQueueRecorder {
	return &RedisQueueRecorder{
		rdb: rdb,
		log: log.With().Str("component", "result_recorder").Logger(),
	}
}

// Record pushes the result onto the persistence queue.
func (r *RedisQueueRecorder) Record(ctx context.Context, result *model.SubmissionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if err := r.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}

	r.log.Debug().
		Str("exam_id", result.ExamID).
		Str("candidate_id", result.CandidateID).
		Msg("Result enqueued")
	return nil
}
