package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes persist_results_queue and records submission
// results into the per-exam results hash, announcing each batch on the
// exam's submissions channel for monitors.
type ResultWorker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		rdb: rdb,
		log: log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start begins the worker loop. Call in a goroutine; cancelling ctx drains
// the current batch before returning.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.SubmissionResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.Flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.Flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.SubmissionResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &res)
		}
	}
}

// ----------------------------------------------------------------
// Batch recording
// ----------------------------------------------------------------

// Flush writes a batch of results into their exams' result hashes and
// publishes each on the exam's submissions channel. Failed items are pushed
// back onto the queue for a later attempt.
func (w *ResultWorker) Flush(ctx context.Context, batch []*model.SubmissionResult) {
	if len(batch) == 0 {
		return
	}

	pipe := w.rdb.Pipeline()
	raws := make([][]byte, len(batch))
	for i, res := range batch {
		raw, err := json.Marshal(res)
		if err != nil {
			w.log.Error().Err(err).Msg("Marshal result failed")
			continue
		}
		raws[i] = raw
		pipe.HSet(ctx, config.CacheKey.ExamResultsKey(res.ExamID), res.CandidateID, raw)
		pipe.Publish(ctx, config.CacheKey.ExamSubmissionsChannel(res.ExamID), raw)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Batch record failed, using fallback")
		for i, res := range batch {
			if raws[i] == nil {
				continue
			}
			if err := w.recordSingle(ctx, res, raws[i]); err != nil {
				w.log.Error().Err(err).
					Str("exam_id", res.ExamID).
					Str("candidate_id", res.CandidateID).
					Msg("recordSingle failed, requeueing")
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raws[i])
			}
		}
		return
	}

	w.log.Info().Int("count", len(batch)).Msg("Results recorded")
}

// ----------------------------------------------------------------
// Fallback single record
// ----------------------------------------------------------------

func (w *ResultWorker) recordSingle(ctx context.Context, res *model.SubmissionResult, raw []byte) error {
	if err := w.rdb.HSet(ctx, config.CacheKey.ExamResultsKey(res.ExamID), res.CandidateID, raw).Err(); err != nil {
		return err
	}
	return w.rdb.Publish(ctx, config.CacheKey.ExamSubmissionsChannel(res.ExamID), raw).Err()
}
