package prediction

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

var (
	ErrInvalidPick = errors.New("invalid pick")
	ErrNotFound    = errors.New("prediction not found")
)

// Prediction is one user's pick for one match.
type Prediction struct {
	ID            int64
	UserID        int64
	MatchID       int64
	Week          int
	Pick          match.Result
	PointsAwarded *int
	UpdatedAt     time.Time
}

// ParsePick validates a submitted pick.
func ParsePick(value string) (match.Result, error) {
	pick, err := match.ParseResult(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPick, value)
	}
	return pick, nil
}

// Points is 1 for a correct pick and 0 otherwise.
func (p Prediction) Points(result match.Result) int {
	if result.Valid() && p.Pick == result {
		return 1
	}
	return 0
}

// NeedsPointsWrite reports whether the stored points differ from points.
func (p Prediction) NeedsPointsWrite(points int) bool {
	return p.PointsAwarded == nil || *p.PointsAwarded != points
}
