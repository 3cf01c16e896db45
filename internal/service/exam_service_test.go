package service

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
)

func newTestService(t *testing.T) (*ExamService, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewExamService(rdb, zerolog.Nop()), rdb
}

func sampleExam() *model.ExamDefinition {
	return &model.ExamDefinition{
		ID:               "exam-1",
		Title:            "Sample exam",
		TimingMode:       model.TimingTotalExam,
		TotalTimeMinutes: 30,
		AccessPassword:   "s3cret",
		Questions: []model.Question{
			{
				ID:    "q1",
				Text:  "Pick a",
				Marks: 2,
				Options: []model.Option{
					{ID: "q1-a", Text: "a", IsCorrect: true},
					{ID: "q1-b", Text: "b"},
				},
			},
		},
	}
}

func TestPublishGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Publish(ctx, sampleExam()))

	exam, err := svc.Get(ctx, "exam-1")
	require.NoError(t, err)
	assert.Equal(t, "Sample exam", exam.Title)
	assert.Equal(t, "q1-a", exam.Questions[0].CorrectOptionID())
	assert.Equal(t, "s3cret", exam.AccessPassword)
}

func TestPublishAssignsMissingID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	exam := sampleExam()
	exam.ID = ""
	require.NoError(t, svc.Publish(ctx, exam))
	assert.NotEmpty(t, exam.ID)

	got, err := svc.Get(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.ID, got.ID)
}

func TestPublishRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	empty := sampleExam()
	empty.Questions = nil
	assert.ErrorIs(t, svc.Publish(ctx, empty), ErrNoQuestions)

	bad := sampleExam()
	bad.TimingMode = "SOMETHING_ELSE"
	assert.ErrorIs(t, svc.Publish(ctx, bad), ErrInvalidTimingMode)
}

func TestPublishDefaultsTimingModeToNone(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	exam := sampleExam()
	exam.TimingMode = ""
	require.NoError(t, svc.Publish(ctx, exam))
	assert.Equal(t, model.TimingNone, exam.TimingMode)
}

func TestGetUnknownExam(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestGetPaperStripsAnswerKeyAndPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.Publish(ctx, sampleExam()))

	paper, err := svc.GetPaper(ctx, "exam-1")
	require.NoError(t, err)

	raw, err := json.Marshal(paper)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "is_correct")
	assert.NotContains(t, string(raw), "s3cret")

	assert.Equal(t, "exam-1", paper.ExamID)
	require.Len(t, paper.Questions, 1)
	assert.Equal(t, float64(2), paper.Questions[0].Marks)
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.Publish(ctx, sampleExam()))

	_, err := svc.CheckAccess(ctx, "exam-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	exam, err := svc.CheckAccess(ctx, "exam-1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "exam-1", exam.ID)

	open := sampleExam()
	open.ID = "exam-open"
	open.AccessPassword = ""
	require.NoError(t, svc.Publish(ctx, open))

	_, err = svc.CheckAccess(ctx, "exam-open", "")
	assert.NoError(t, err, "passwordless exams admit anyone")
}

func TestListSkipsDanglingEntries(t *testing.T) {
	ctx := context.Background()
	svc, rdb := newTestService(t)
	require.NoError(t, svc.Publish(ctx, sampleExam()))

	// Index entry whose definition is gone.
	require.NoError(t, rdb.SAdd(ctx, config.CacheKey.ExamIndexKey(), "ghost").Err())

	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "exam-1", summaries[0].ID)
	assert.Equal(t, 1, summaries[0].QuestionCount)
	assert.True(t, summaries[0].HasPassword)
}

func TestRemoveKeepsResults(t *testing.T) {
	ctx := context.Background()
	svc, rdb := newTestService(t)
	require.NoError(t, svc.Publish(ctx, sampleExam()))

	res := model.SubmissionResult{
		ExamID:      "exam-1",
		CandidateID: "alice",
		TotalMarks:  2,
		SubmittedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.NoError(t, rdb.HSet(ctx, config.CacheKey.ExamResultsKey("exam-1"), "alice", raw).Err())

	require.NoError(t, svc.Remove(ctx, "exam-1"))

	_, err = svc.Get(ctx, "exam-1")
	assert.ErrorIs(t, err, ErrExamNotFound)

	results, err := svc.Results(ctx, "exam-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].CandidateID)
}

func TestResultsSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	svc, rdb := newTestService(t)

	raw, err := json.Marshal(model.SubmissionResult{ExamID: "exam-1", CandidateID: "bob"})
	require.NoError(t, err)
	require.NoError(t, rdb.HSet(ctx, config.CacheKey.ExamResultsKey("exam-1"), "bob", raw).Err())
	require.NoError(t, rdb.HSet(ctx, config.CacheKey.ExamResultsKey("exam-1"), "mallory", "{not json").Err())

	results, err := svc.Results(ctx, "exam-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bob", results[0].CandidateID)
}
