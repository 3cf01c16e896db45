package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwiyanr/examflow/internal/model"
)

func question(id, correct string, marks float64) model.Question {
	return model.Question{
		ID:    id,
		Text:  "q " + id,
		Marks: marks,
		Options: []model.Option{
			{ID: id + "-a", Text: "a", IsCorrect: correct == id + "-a"},
			{ID: id + "-b", Text: "b", IsCorrect: correct == id + "-b"},
			{ID: id + "-c", Text: "c", IsCorrect: correct == id + "-c"},
		},
	}
}

func TestGrade(t *testing.T) {
	questions := []model.Question{
		question("q1", "q1-a", 1),
		question("q2", "q2-b", 2),
		question("q3", "q3-c", 1),
	}

	tests := []struct {
		name     string
		answers  map[string]string
		obtained float64
	}{
		{
			name:     "two correct",
			answers:  map[string]string{"q1": "q1-a", "q2": "q2-a", "q3": "q3-c"},
			obtained: 2,
		},
		{
			name:     "all correct",
			answers:  map[string]string{"q1": "q1-a", "q2": "q2-b", "q3": "q3-c"},
			obtained: 4,
		},
		{
			name:     "no answers",
			answers:  map[string]string{},
			obtained: 0,
		},
		{
			name:     "all wrong",
			answers:  map[string]string{"q1": "q1-b", "q2": "q2-a", "q3": "q3-a"},
			obtained: 0,
		},
		{
			name:     "unknown question ids are ignored",
			answers:  map[string]string{"q1": "q1-a", "q9": "q9-a"},
			obtained: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Grade(questions, tt.answers)
			assert.Equal(t, tt.obtained, score.ObtainedMarks)
			assert.Equal(t, float64(4), score.TotalMarks)
		})
	}
}

func TestGradeDefaultsMarksToOne(t *testing.T) {
	questions := []model.Question{
		question("q1", "q1-a", 0), // unset marks count as 1
		question("q2", "q2-a", 3),
	}

	score := Grade(questions, map[string]string{"q1": "q1-a"})
	assert.Equal(t, float64(4), score.TotalMarks)
	assert.Equal(t, float64(1), score.ObtainedMarks)
}

func TestGradeNoCorrectOptionContributesZero(t *testing.T) {
	q := model.Question{
		ID:   "q1",
		Text: "no key",
		Options: []model.Option{
			{ID: "q1-a", Text: "a"},
			{ID: "q1-b", Text: "b"},
		},
	}

	score := Grade([]model.Question{q}, map[string]string{"q1": "q1-a"})
	assert.Equal(t, float64(1), score.TotalMarks)
	assert.Equal(t, float64(0), score.ObtainedMarks)
}

func TestGradeNoNegativeMarking(t *testing.T) {
	questions := []model.Question{
		question("q1", "q1-a", 2),
		question("q2", "q2-a", 2),
	}

	// One right, one wrong: the wrong answer must not deduct.
	score := Grade(questions, map[string]string{"q1": "q1-a", "q2": "q2-b"})
	assert.Equal(t, float64(2), score.ObtainedMarks)
}
