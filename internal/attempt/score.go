// Package attempt implements the solo quiz attempt: the play-through state
// machine and the scoring/shuffle utilities it relies on.
package attempt

import (
	"math"
	"math/rand"

	"quizhub/internal/model"
)

// Scoring constants: flat base per correct answer plus a perfect-run bonus.
const (
	pointsPerCorrect = 10
	perfectBonus     = 50
)

// Summary is the locally computed outcome of an answer map over a question
// set. The server's submission response remains authoritative for what gets
// stored.
type Summary struct {
	Score          int     `json:"score"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

// Score computes the attempt summary. Unanswered questions count as
// incorrect; zero questions yields the zero Summary rather than an error.
func Score(selected map[int64]model.AnswerOption, questions []model.Question) Summary {
	total := len(questions)
	if total == 0 {
		return Summary{}
	}

	correct := 0
	for _, q := range questions {
		if a, ok := selected[q.ID]; ok && a.IsCorrect {
			correct++
		}
	}

	score := correct * pointsPerCorrect
	if correct == total {
		score += perfectBonus
	}

	pct := float64(correct) / float64(total) * 100
	return Summary{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Percentage:     math.Round(pct*100) / 100,
	}
}

// Shuffle returns a shuffled copy, leaving the input untouched. Used for
// presentation order only; the attempt itself keeps the server's order.
func Shuffle[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
