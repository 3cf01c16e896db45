package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/model"
)

// Domain Errors
var (
	ErrExamNotFound      = errors.New("exam not found")
	ErrNoQuestions       = errors.New("exam has no questions, cannot publish")
	ErrInvalidPassword   = errors.New("invalid access password")
	ErrInvalidTimingMode = errors.New("unknown timing mode")
)

// ExamService is the exam-loading collaborator: it keeps published
// ExamDefinitions in Redis and serves them to sessions (full definition,
// answer key included) and candidates (sanitized paper).
type ExamService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		rdb: rdb,
		log: log.With().Str("component", "exam_service").Logger(),
	}
}

// Publish validates the definition and stores it in the catalog. Exams
// without an id get one assigned.
func (s *ExamService) Publish(ctx context.Context, exam *model.ExamDefinition) error {
	if len(exam.Questions) == 0 {
		return ErrNoQuestions
	}
	switch exam.TimingMode {
	case model.TimingTotalExam, model.TimingPerQuestion, model.TimingNone:
	case "":
		exam.TimingMode = model.TimingNone
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTimingMode, exam.TimingMode)
	}
	if exam.ID == "" {
		exam.ID = uuid.New().String()
	}

	raw, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("marshal exam definition: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamDefinitionKey(exam.ID), raw, 0)
	pipe.SAdd(ctx, config.CacheKey.ExamIndexKey(), exam.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store exam definition: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID).
		Str("title", exam.Title).
		Int("questions", len(exam.Questions)).
		Msg("Exam published")
	return nil
}

// Get retrieves the full exam definition, answer key included. Only the
// engine and the scorer may see this view.
func (s *ExamService) Get(ctx context.Context, examID string) (*model.ExamDefinition, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExamDefinitionKey(examID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam definition: %w", err)
	}

	var exam model.ExamDefinition
	if err := json.Unmarshal([]byte(raw), &exam); err != nil {
		return nil, fmt.Errorf("decode exam definition: %w", err)
	}
	return &exam, nil
}

// GetPaper retrieves the sanitized candidate view of an exam.
func (s *ExamService) GetPaper(ctx context.Context, examID string) (*model.ExamPaper, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	return exam.Paper(), nil
}

// CheckAccess verifies the exam's access password (when one is set) and
// returns the full definition on success.
func (s *ExamService) CheckAccess(ctx context.Context, examID, password string) (*model.ExamDefinition, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AccessPassword != "" && exam.AccessPassword != password {
		return nil, ErrInvalidPassword
	}
	return exam, nil
}

// Remove deletes an exam from the catalog. Recorded results are kept.
func (s *ExamService) Remove(ctx context.Context, examID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamDefinitionKey(examID))
	pipe.SRem(ctx, config.CacheKey.ExamIndexKey(), examID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove exam definition: %w", err)
	}
	return nil
}

// ExamSummary is one row of the published exam listing.
type ExamSummary struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	TimingMode    model.TimingMode `json:"timing_mode"`
	QuestionCount int              `json:"question_count"`
	HasPassword   bool             `json:"has_password"`
}

// List returns all published exams as candidate-safe summaries.
func (s *ExamService) List(ctx context.Context) ([]ExamSummary, error) {
	ids, err := s.rdb.SMembers(ctx, config.CacheKey.ExamIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list exam ids: %w", err)
	}

	summaries := make([]ExamSummary, 0, len(ids))
	for _, id := range ids {
		exam, err := s.Get(ctx, id)
		if err != nil {
			// Stale index entry; skip it.
			s.log.Warn().Err(err).Str("exam_id", id).Msg("Dangling exam index entry")
			continue
		}
		summaries = append(summaries, ExamSummary{
			ID:            exam.ID,
			Title:         exam.Title,
			TimingMode:    exam.TimingMode,
			QuestionCount: len(exam.Questions),
			HasPassword:   exam.AccessPassword != "",
		})
	}
	return summaries, nil
}

// Results returns the recorded submission results for an exam, one per
// candidate, as flushed by the result worker.
func (s *ExamService) Results(ctx context.Context, examID string) ([]model.SubmissionResult, error) {
	fields, err := s.rdb.HGetAll(ctx, config.CacheKey.ExamResultsKey(examID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get exam results: %w", err)
	}

	results := make([]model.SubmissionResult, 0, len(fields))
	for candidateID, raw := range fields {
		var res model.SubmissionResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			s.log.Warn().Err(err).
				Str("exam_id", examID).
				Str("candidate_id", candidateID).
				Msg("Corrupt recorded result")
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
