// Package scoring computes obtained/total marks from final answers. It is
// pure: no I/O, no side effects, identical inputs give identical outputs.
package scoring

import "github.com/dwiyanr/examflow/internal/model"

// Score holds the outcome of grading one attempt.
type Score struct {
	ObtainedMarks float64 `json:"obtained_marks"`
	TotalMarks    float64 `json:"total_marks"`
}

// Grade tallies marks over the question set. Every question contributes its
// marks (default 1) to the total. A question contributes to the obtained
// marks only when the candidate's answer equals the option flagged correct;
// unanswered questions and questions without a flagged-correct option
// contribute 0. Wrong answers are not penalized.
func Grade(questions []model.Question, answers map[string]string) Score {
	var score Score
	for _, q := range questions {
		marks := q.MarksValue()
		score.TotalMarks += marks

		correct := q.CorrectOptionID()
		if correct == "" {
			continue
		}
		if selected, ok := answers[q.ID]; ok && selected == correct {
			score.ObtainedMarks += marks
		}
	}
	return score
}
