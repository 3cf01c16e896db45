package model

// TimingMode enumerates how an exam's countdown is driven.
type TimingMode string

const (
	// TimingTotalExam runs a single countdown over the whole exam.
	TimingTotalExam TimingMode = "TOTAL_EXAM_TIME"
	// TimingPerQuestion runs an independent countdown for each question.
	TimingPerQuestion TimingMode = "PER_QUESTION_TIME"
	// TimingNone disables the countdown entirely.
	TimingNone TimingMode = "NONE"
)

// DefaultQuestionTimeLimit is applied in per-question mode when a question
// carries no explicit time limit.
const DefaultQuestionTimeLimit = 60

// Option is a single selectable answer for a question. IsCorrect is only
// ever read by the scorer; candidate-facing payloads must not carry it.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Question is one exam question with its ordered options.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
	// Marks awarded for a correct answer. Zero means unset and counts as 1.
	Marks float64 `json:"marks,omitempty"`
	// TimeLimitSeconds is only used in per-question mode. Zero means unset
	// and falls back to DefaultQuestionTimeLimit.
	TimeLimitSeconds int `json:"time_limit_seconds,omitempty"`
}

// MarksValue returns the effective marks for the question.
func (q Question) MarksValue() float64 {
	if q.Marks <= 0 {
		return 1
	}
	return q.Marks
}

// TimeLimit returns the effective per-question countdown in seconds.
func (q Question) TimeLimit() int {
	if q.TimeLimitSeconds <= 0 {
		return DefaultQuestionTimeLimit
	}
	return q.TimeLimitSeconds
}

// OptionByID returns the option with the given id, or nil.
func (q Question) OptionByID(optionID string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}

// CorrectOptionID returns the id of the option flagged correct, or "" when
// the question has no flagged-correct option.
func (q Question) CorrectOptionID() string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return ""
}

// ExamDefinition is the read-only exam input consumed by the delivery
// engine. It is assumed immutable for the duration of a session.
type ExamDefinition struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`

	TimingMode TimingMode `json:"timing_mode"`
	// TotalTimeMinutes is only used in total-exam mode.
	TotalTimeMinutes int `json:"total_time_minutes,omitempty"`
	// AccessPassword gates joining when non-empty.
	AccessPassword string `json:"access_password,omitempty"`
}

// QuestionByID returns the question with the given id, or nil.
func (e *ExamDefinition) QuestionByID(questionID string) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == questionID {
			return &e.Questions[i]
		}
	}
	return nil
}

// Timed reports whether the exam has any countdown configured. A total-exam
// exam without a configured duration is untimed.
func (e *ExamDefinition) Timed() bool {
	switch e.TimingMode {
	case TimingTotalExam:
		return e.TotalTimeMinutes > 0
	case TimingPerQuestion:
		return true
	default:
		return false
	}
}

// ─── Candidate-facing payloads (no correct answers) ─────────────────

// OptionForCandidate is an option stripped of the correct flag.
type OptionForCandidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionForCandidate is a question as sent to exam takers.
type QuestionForCandidate struct {
	ID               string               `json:"id"`
	Text             string               `json:"text"`
	Options          []OptionForCandidate `json:"options"`
	Marks            float64              `json:"marks"`
	TimeLimitSeconds int                  `json:"time_limit_seconds"`
}

// ExamPaper is the sanitized exam payload sent to candidates. It never
// carries correct flags or the access password.
type ExamPaper struct {
	ExamID           string                 `json:"exam_id"`
	Title            string                 `json:"title"`
	TimingMode       TimingMode             `json:"timing_mode"`
	TotalTimeMinutes int                    `json:"total_time_minutes,omitempty"`
	Questions        []QuestionForCandidate `json:"questions"`
}

// Paper builds the sanitized candidate view of the exam.
func (e *ExamDefinition) Paper() *ExamPaper {
	questions := make([]QuestionForCandidate, len(e.Questions))
	for i, q := range e.Questions {
		opts := make([]OptionForCandidate, len(q.Options))
		for j, o := range q.Options {
			opts[j] = OptionForCandidate{ID: o.ID, Text: o.Text}
		}
		questions[i] = QuestionForCandidate{
			ID:               q.ID,
			Text:             q.Text,
			Options:          opts,
			Marks:            q.MarksValue(),
			TimeLimitSeconds: q.TimeLimit(),
		}
	}
	return &ExamPaper{
		ExamID:           e.ID,
		Title:            e.Title,
		TimingMode:       e.TimingMode,
		TotalTimeMinutes: e.TotalTimeMinutes,
		Questions:        questions,
	}
}
