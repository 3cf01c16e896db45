package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/model"
	"github.com/dwiyanr/examflow/internal/record"
)

func newTestWorker(t *testing.T) (*ResultWorker, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewResultWorker(rdb, zerolog.Nop()), rdb
}

func result(examID, candidateID string, obtained float64) *model.SubmissionResult {
	return &model.SubmissionResult{
		ExamID:        examID,
		CandidateID:   candidateID,
		Answers:       map[string]string{"q1": "q1-a"},
		ObtainedMarks: obtained,
		TotalMarks:    10,
		SubmittedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestFlushRecordsBatchIntoResultHashes(t *testing.T) {
	ctx := context.Background()
	w, rdb := newTestWorker(t)

	w.Flush(ctx, []*model.SubmissionResult{
		result("exam-1", "alice", 7),
		result("exam-1", "bob", 4),
		result("exam-2", "alice", 10),
	})

	fields, err := rdb.HGetAll(ctx, config.CacheKey.ExamResultsKey("exam-1")).Result()
	require.NoError(t, err)
	assert.Len(t, fields, 2)

	var stored model.SubmissionResult
	require.NoError(t, json.Unmarshal([]byte(fields["alice"]), &stored))
	assert.Equal(t, float64(7), stored.ObtainedMarks)
	assert.Equal(t, float64(10), stored.TotalMarks)

	other, err := rdb.HGet(ctx, config.CacheKey.ExamResultsKey("exam-2"), "alice").Result()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(other), &stored))
	assert.Equal(t, float64(10), stored.ObtainedMarks)
}

func TestFlushOverwritesResubmittedCandidate(t *testing.T) {
	ctx := context.Background()
	w, rdb := newTestWorker(t)

	w.Flush(ctx, []*model.SubmissionResult{result("exam-1", "alice", 3)})
	w.Flush(ctx, []*model.SubmissionResult{result("exam-1", "alice", 9)})

	raw, err := rdb.HGet(ctx, config.CacheKey.ExamResultsKey("exam-1"), "alice").Result()
	require.NoError(t, err)

	var stored model.SubmissionResult
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, float64(9), stored.ObtainedMarks)
}

func TestFlushEmptyBatchIsNoop(t *testing.T) {
	w, rdb := newTestWorker(t)
	w.Flush(context.Background(), nil)

	keys, err := rdb.Keys(context.Background(), "*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// Recorder to worker round trip over the real queue.
func TestQueuedResultIsConsumedAndRecorded(t *testing.T) {
	ctx := context.Background()
	w, rdb := newTestWorker(t)
	rec := record.NewRedisQueueRecorder(rdb, zerolog.Nop())

	require.NoError(t, rec.Record(ctx, result("exam-1", "carol", 6)))

	item, err := rdb.LPop(ctx, config.WorkerKey.PersistResultsQueue).Result()
	require.NoError(t, err)

	var res model.SubmissionResult
	require.NoError(t, json.Unmarshal([]byte(item), &res))
	w.Flush(ctx, []*model.SubmissionResult{&res})

	raw, err := rdb.HGet(ctx, config.CacheKey.ExamResultsKey("exam-1"), "carol").Result()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), &res))
	assert.Equal(t, "carol", res.CandidateID)
	assert.Equal(t, float64(6), res.ObtainedMarks)
}
