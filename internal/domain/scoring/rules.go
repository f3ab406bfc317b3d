package scoring

import (
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

// Rules stores the weekly scoring parameters.
type Rules struct {
	PointsPerCorrect int
	FullHouseCorrect int
	FullHouseBonus   int
}

func DefaultRules() Rules {
	return Rules{
		PointsPerCorrect: 1,
		FullHouseCorrect: 5,
		FullHouseBonus:   5,
	}
}

// Tally is one user's outcome for a single week.
type Tally struct {
	UserID        int64
	Predictions   int
	WeeklyCorrect int
}

func (t Tally) Incorrect() int {
	if t.Predictions < t.WeeklyCorrect {
		return 0
	}
	return t.Predictions - t.WeeklyCorrect
}

func (r Rules) IsFullHouse(t Tally) bool {
	return t.WeeklyCorrect == r.FullHouseCorrect
}

// IsBlank requires at least one submitted pick.
func (r Rules) IsBlank(t Tally) bool {
	return t.Predictions > 0 && t.WeeklyCorrect == 0
}

func (r Rules) PointsToAdd(t Tally) int {
	points := t.WeeklyCorrect * r.PointsPerCorrect
	if r.IsFullHouse(t) {
		points += r.FullHouseBonus
	}
	return points
}

// TallyWeek aggregates correctness per user. Predictions whose match has no
// result count as submitted but not correct.
func TallyWeek(predictions []prediction.Prediction, results map[int64]match.Result) map[int64]Tally {
	out := make(map[int64]Tally)
	for _, item := range predictions {
		tally := out[item.UserID]
		tally.UserID = item.UserID
		tally.Predictions++
		tally.WeeklyCorrect += item.Points(results[item.MatchID])
		out[item.UserID] = tally
	}
	return out
}
