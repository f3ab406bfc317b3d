package user

import "errors"

var ErrNotFound = errors.New("user not found")

// User holds a player's cumulative season totals.
type User struct {
	ID               int64
	Name             string
	Points           int
	CorrectResults   int
	IncorrectResults int
	FullHouses       int
	Blanks           int
	// CurrentWeek is the next week eligible for scoring.
	CurrentWeek int
}

// Accuracy is correct/(correct+incorrect), 0 when nothing was scored yet.
func (u User) Accuracy() float64 {
	total := u.CorrectResults + u.IncorrectResults
	if total <= 0 {
		return 0
	}
	return float64(u.CorrectResults) / float64(total)
}

// HasPassedWeek reports whether the user's cursor is beyond week.
func (u User) HasPassedWeek(week int) bool {
	return u.CurrentWeek > week
}
