package model

import "time"

// AttemptState is the durable snapshot of an in-progress attempt, keyed by
// (exam, candidate). It is written through on every answer change,
// navigation, and timer tick, and deleted once the attempt is submitted.
type AttemptState struct {
	// Answers maps question id to the selected option id. Absence means
	// the question is unanswered.
	Answers map[string]string `json:"answers"`
	// CurrentIndex is the question the candidate is looking at.
	CurrentIndex int `json:"current_index"`
	// SecondsLeft is the remaining countdown. Nil means the exam is
	// untimed. It never increases while the attempt is active.
	SecondsLeft *int `json:"seconds_left"`
}

// Clone returns a deep copy so snapshots handed out to callers cannot
// mutate engine state.
func (a AttemptState) Clone() AttemptState {
	answers := make(map[string]string, len(a.Answers))
	for k, v := range a.Answers {
		answers[k] = v
	}
	out := AttemptState{Answers: answers, CurrentIndex: a.CurrentIndex}
	if a.SecondsLeft != nil {
		s := *a.SecondsLeft
		out.SecondsLeft = &s
	}
	return out
}

// SubmissionResult is produced exactly once per attempt, at submission time,
// and handed to the result recorder.
type SubmissionResult struct {
	ExamID        string            `json:"exam_id"`
	CandidateID   string            `json:"candidate_id"`
	Answers       map[string]string `json:"answers"`
	ObtainedMarks float64           `json:"obtained_marks"`
	TotalMarks    float64           `json:"total_marks"`
	SubmittedAt   time.Time         `json:"submitted_at"`
}
