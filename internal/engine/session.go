// Package engine drives one candidate's pass through an exam: question
// navigation, answer capture, the per-second countdown, and submission.
// Each session owns its state and its ticker; nothing is shared across
// sessions.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/model"
	"github.com/dwiyanr/examflow/internal/record"
	"github.com/dwiyanr/examflow/internal/scoring"
	"github.com/dwiyanr/examflow/internal/store"
)

// Domain Errors
var (
	ErrNoQuestions     = errors.New("exam has no questions")
	ErrSessionStopped  = errors.New("session is already submitted")
	ErrUnknownQuestion = errors.New("question does not belong to this exam")
	ErrUnknownOption   = errors.New("option does not belong to this question")
)

// Session is the exam-delivery state machine for one (exam, candidate)
// attempt. All operations are safe for concurrent use; the ticker and the
// caller are serialized through the session mutex so ticks never overlap
// other mutations.
type Session struct {
	mu sync.Mutex

	exam        *model.ExamDefinition
	candidateID string

	state  model.AttemptState
	timer  TimerStatus
	result *model.SubmissionResult

	attempts store.AttemptStore
	recorder record.ResultRecorder
	notify   NotifyFunc
	log      zerolog.Logger

	tickerStop chan struct{}
}

// NewSession creates a session for the candidate, resuming from a prior
// attempt snapshot when one exists. The initial state is written through to
// the attempt store before the session is returned.
func NewSession(
	ctx context.Context,
	exam *model.ExamDefinition,
	candidateID string,
	attempts store.AttemptStore,
	recorder record.ResultRecorder,
	log zerolog.Logger,
) (*Session, error) {
	if len(exam.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		exam:        exam,
		candidateID: candidateID,
		attempts:    attempts,
		recorder:    recorder,
		timer:       TimerIdle,
		log: log.With().
			Str("component", "session").
			Str("exam_id", exam.ID).
			Str("candidate_id", candidateID).
			Logger(),
	}

	snap, err := attempts.Load(ctx, exam.ID, candidateID)
	if err != nil {
		// A broken snapshot backing never blocks the candidate; they get a
		// fresh attempt.
		s.log.Warn().Err(err).Msg("Attempt load failed, starting fresh")
		snap = nil
	}

	s.state = s.restoreState(snap)
	s.state.SecondsLeft = initialSeconds(exam, exam.Questions[s.state.CurrentIndex], snap)
	if s.state.SecondsLeft != nil {
		s.timer = TimerRunning
	}

	if err := s.save(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Initial attempt save failed")
	}

	if snap != nil {
		s.log.Info().
			Int("current_index", s.state.CurrentIndex).
			Int("answers", len(s.state.Answers)).
			Msg("Attempt resumed")
	}

	return s, nil
}

// restoreState rebuilds the attempt state from a snapshot, clamping the
// index into bounds and dropping answers that do not map onto this exam's
// questions and options. Cross-question corruption would silently break
// scoring, so it is filtered here.
func (s *Session) restoreState(snap *model.AttemptState) model.AttemptState {
	state := model.AttemptState{Answers: make(map[string]string)}
	if snap == nil {
		return state
	}

	for qID, optID := range snap.Answers {
		q := s.exam.QuestionByID(qID)
		if q == nil || q.OptionByID(optID) == nil {
			s.log.Warn().
				Str("question_id", qID).
				Str("option_id", optID).
				Msg("Dropping answer that does not match the exam")
			continue
		}
		state.Answers[qID] = optID
	}

	state.CurrentIndex = snap.CurrentIndex
	if last := len(s.exam.Questions) - 1; state.CurrentIndex > last {
		state.CurrentIndex = last
	}
	if state.CurrentIndex < 0 {
		state.CurrentIndex = 0
	}
	return state
}

// SetNotify registers the event callback. Call before StartTicker.
func (s *Session) SetNotify(fn NotifyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// StartTicker begins delivering one Tick per second until the session stops
// or Close is called. Starting again first cancels the previous ticker, so
// duplicate concurrent tickers cannot exist.
func (s *Session) StartTicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTickerLocked()
}

// Close cancels the ticker unconditionally. An unsubmitted attempt stays in
// the attempt store so the candidate can resume later.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTickerLocked()
}

// SelectAnswer records (or overwrites) the candidate's option for a
// question and writes the state through to the attempt store.
func (s *Session) SelectAnswer(ctx context.Context, questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return ErrSessionStopped
	}

	q := s.exam.QuestionByID(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if q.OptionByID(optionID) == nil {
		return ErrUnknownOption
	}

	s.state.Answers[questionID] = optionID
	return s.save(ctx)
}

// Next moves to the following question. A no-op at the last question. In
// per-question mode the target question's countdown restarts from its own
// limit; unused seconds never carry over.
func (s *Session) Next(ctx context.Context) error {
	return s.navigate(ctx, +1)
}

// Previous moves to the preceding question. A no-op at the first question.
func (s *Session) Previous(ctx context.Context) error {
	return s.navigate(ctx, -1)
}

func (s *Session) navigate(ctx context.Context, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return ErrSessionStopped
	}

	target := s.state.CurrentIndex + delta
	last := len(s.exam.Questions) - 1
	if target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	if target == s.state.CurrentIndex {
		return nil
	}

	s.state.CurrentIndex = target
	s.rearmLocked()
	return s.save(ctx)
}

// rearmLocked restarts the countdown for the current question in
// per-question mode. Caller must hold s.mu.
func (s *Session) rearmLocked() {
	if s.exam.TimingMode != model.TimingPerQuestion || s.timer != TimerRunning {
		return
	}
	fresh := s.exam.Questions[s.state.CurrentIndex].TimeLimit()
	s.state.SecondsLeft = &fresh
}

// Submit finishes the attempt: scores it, hands the result to the recorder,
// clears the attempt store entry, and stops the session. Idempotent: once
// stopped, further calls return the original result without side effects.
// This is the single join point for manual submission and timer expiry.
func (s *Session) Submit(ctx context.Context) (*model.SubmissionResult, error) {
	s.mu.Lock()
	if s.result != nil {
		res := s.result
		s.mu.Unlock()
		return res, nil
	}

	res, ev := s.submitLocked(ctx, "manual")
	notify := s.notify
	s.mu.Unlock()

	emit(notify, ev)
	return res, nil
}

// submitLocked performs the one-shot submission transition. Caller must
// hold s.mu and have checked s.result is nil.
func (s *Session) submitLocked(ctx context.Context, reason string) (*model.SubmissionResult, Event) {
	score := scoring.Grade(s.exam.Questions, s.state.Answers)

	answers := make(map[string]string, len(s.state.Answers))
	for k, v := range s.state.Answers {
		answers[k] = v
	}

	res := &model.SubmissionResult{
		ExamID:        s.exam.ID,
		CandidateID:   s.candidateID,
		Answers:       answers,
		ObtainedMarks: score.ObtainedMarks,
		TotalMarks:    score.TotalMarks,
		SubmittedAt:   time.Now().UTC(),
	}

	// Recording is best-effort: a failed hand-off is logged, not retried,
	// and does not block the Stopped transition. The attempt entry is
	// cleared regardless so a stale attempt cannot be resumed.
	if err := s.recorder.Record(ctx, res); err != nil {
		s.log.Error().Err(err).
			Str("reason", reason).
			Float64("obtained", res.ObtainedMarks).
			Msg("Result recording failed, submission is lost downstream")
	}
	if err := s.attempts.Clear(ctx, s.exam.ID, s.candidateID); err != nil {
		s.log.Error().Err(err).Msg("Attempt clear failed")
	}

	s.result = res
	s.timer = TimerStopped
	s.stopTickerLocked()

	s.log.Info().
		Str("reason", reason).
		Float64("obtained", res.ObtainedMarks).
		Float64("total", res.TotalMarks).
		Msg("Attempt submitted")

	return res, Event{Type: EventSubmitted, CurrentIndex: s.state.CurrentIndex, Result: res}
}

// Tick delivers one second of countdown. It is a no-op unless the timer is
// running. Reaching zero triggers the mode-specific expiry transition:
// total-exam mode submits; per-question mode advances and re-arms, or
// submits on the last question.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()

	if s.timer != TimerRunning || s.state.SecondsLeft == nil {
		s.mu.Unlock()
		return
	}

	if *s.state.SecondsLeft > 0 {
		*s.state.SecondsLeft--
	}

	if *s.state.SecondsLeft > 0 {
		if err := s.save(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Attempt save on tick failed")
		}
		ev := Event{Type: EventTick, CurrentIndex: s.state.CurrentIndex, SecondsLeft: intPtr(*s.state.SecondsLeft)}
		notify := s.notify
		s.mu.Unlock()
		emit(notify, ev)
		return
	}

	// Countdown reached zero.
	var ev Event
	switch s.exam.TimingMode {
	case model.TimingPerQuestion:
		last := len(s.exam.Questions) - 1
		if s.state.CurrentIndex < last {
			s.state.CurrentIndex++
			fresh := s.exam.Questions[s.state.CurrentIndex].TimeLimit()
			s.state.SecondsLeft = &fresh
			if err := s.save(ctx); err != nil {
				s.log.Warn().Err(err).Msg("Attempt save on auto-advance failed")
			}
			ev = Event{Type: EventAutoAdvance, CurrentIndex: s.state.CurrentIndex, SecondsLeft: intPtr(fresh)}
		} else {
			s.timer = TimerExpired
			_, ev = s.submitLocked(ctx, "per_question_expiry")
		}
	default:
		s.timer = TimerExpired
		_, ev = s.submitLocked(ctx, "total_time_expiry")
	}

	notify := s.notify
	s.mu.Unlock()
	emit(notify, ev)
}

// save writes the full current state through to the attempt store. Caller
// must hold s.mu.
func (s *Session) save(ctx context.Context) error {
	return s.attempts.Save(ctx, s.exam.ID, s.candidateID, s.state.Clone())
}

// State returns a copy of the current attempt state.
func (s *Session) State() model.AttemptState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// TimerState returns the current countdown state.
func (s *Session) TimerState() TimerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer
}

// Result returns the submission result, or nil while in progress.
func (s *Session) Result() *model.SubmissionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func emit(fn NotifyFunc, ev Event) {
	if fn != nil {
		fn(ev)
	}
}

func intPtr(v int) *int {
	return &v
}
