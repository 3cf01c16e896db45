package engine

import (
	"context"
	"time"

	"github.com/dwiyanr/examflow/internal/model"
)

// TimerStatus enumerates the countdown states of a session.
type TimerStatus string

const (
	// TimerIdle means no countdown is configured for the exam.
	TimerIdle TimerStatus = "IDLE"
	// TimerRunning means the countdown is ticking once per second.
	TimerRunning TimerStatus = "RUNNING"
	// TimerExpired means the countdown reached zero and is about to submit.
	TimerExpired TimerStatus = "EXPIRED"
	// TimerStopped means the session was submitted; no further ticks.
	TimerStopped TimerStatus = "STOPPED"
)

// initialSeconds computes the countdown a session starts with, honoring a
// prior snapshot. Resume never resets the clock backward: a smaller saved
// value wins over the configured limit.
func initialSeconds(exam *model.ExamDefinition, current model.Question, snap *model.AttemptState) *int {
	if !exam.Timed() {
		return nil
	}

	var secs int
	switch exam.TimingMode {
	case model.TimingTotalExam:
		minutes := exam.TotalTimeMinutes
		if minutes < 1 {
			minutes = 1
		}
		secs = minutes * 60
	case model.TimingPerQuestion:
		secs = current.TimeLimit()
	}

	if snap != nil && snap.SecondsLeft != nil && *snap.SecondsLeft < secs {
		secs = *snap.SecondsLeft
	}
	if secs < 0 {
		secs = 0
	}
	return &secs
}

// startTickerLocked starts the per-second tick goroutine. Any previous
// ticker is cancelled first so two tickers can never run concurrently.
// Caller must hold s.mu.
func (s *Session) startTickerLocked() {
	s.stopTickerLocked()
	if s.timer != TimerRunning {
		return
	}
	stop := make(chan struct{})
	s.tickerStop = stop
	go s.runTicker(stop)
}

// stopTickerLocked is the single cancellation point for the tick goroutine.
// Caller must hold s.mu.
func (s *Session) stopTickerLocked() {
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}

func (s *Session) runTicker(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}
