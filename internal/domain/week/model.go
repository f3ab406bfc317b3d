package week

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

// MatchesPerWeek is the number of fixtures seeded for every week.
const MatchesPerWeek = 5

var (
	ErrNoSuchWeek       = errors.New("no such week")
	ErrNotFullyResolved = errors.New("week not fully resolved")
	ErrAlreadyScored    = errors.New("week already scored")
	ErrLocked           = errors.New("week is locked")
)

type State string

const (
	StateOpen       State = "OPEN"
	StateLocked     State = "LOCKED"
	StateResultsSet State = "RESULTS_SET"
	StateScored     State = "SCORED"
)

// Week is derived from the matches sharing a week number.
type Week struct {
	Number  int
	Matches []match.Match
}

// New builds a week from matches, keeping only those with the given number.
func New(number int, matches []match.Match) (Week, error) {
	items := make([]match.Match, 0, MatchesPerWeek)
	for _, item := range matches {
		if item.Week == number {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return Week{}, fmt.Errorf("%w: week=%d", ErrNoSuchWeek, number)
	}
	sortMatches(items)
	return Week{Number: number, Matches: items}, nil
}

// Group splits matches into weeks ordered by week number ascending.
func Group(matches []match.Match) []Week {
	byWeek := make(map[int][]match.Match)
	for _, item := range matches {
		if item.Week <= 0 {
			continue
		}
		byWeek[item.Week] = append(byWeek[item.Week], item)
	}

	out := make([]Week, 0, len(byWeek))
	for number, items := range byWeek {
		sortMatches(items)
		out = append(out, Week{Number: number, Matches: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// LockoutAt is the earliest match lockout, zero when no match has one.
func (w Week) LockoutAt() time.Time {
	var earliest time.Time
	for _, item := range w.Matches {
		if item.LockoutAt.IsZero() {
			continue
		}
		if earliest.IsZero() || item.LockoutAt.Before(earliest) {
			earliest = item.LockoutAt
		}
	}
	return earliest
}

func (w Week) IsLocked(now time.Time) bool {
	for _, item := range w.Matches {
		if item.Locked {
			return true
		}
	}
	lockout := w.LockoutAt()
	return !lockout.IsZero() && !now.Before(lockout)
}

func (w Week) IsFullyResolved() bool {
	if len(w.Matches) == 0 {
		return false
	}
	for _, item := range w.Matches {
		if !item.HasResult() {
			return false
		}
	}
	return true
}

// IsScored reports whether any user's cursor already passed the week.
func (w Week) IsScored(users []user.User) bool {
	for _, item := range users {
		if item.HasPassedWeek(w.Number) {
			return true
		}
	}
	return false
}

func (w Week) CanScore(users []user.User) bool {
	return w.IsFullyResolved() && !w.IsScored(users)
}

// IsAutomatable reports whether a result lookup could make progress.
func (w Week) IsAutomatable() bool {
	missing, withRef := false, false
	for _, item := range w.Matches {
		if !item.HasResult() {
			missing = true
		}
		if item.HasFixtureRef() {
			withRef = true
		}
	}
	return missing && withRef
}

func (w Week) Unresolved() []match.Match {
	out := make([]match.Match, 0, len(w.Matches))
	for _, item := range w.Matches {
		if !item.HasResult() {
			out = append(out, item)
		}
	}
	return out
}

// Results maps match id to result for resolved matches.
func (w Week) Results() map[int64]match.Result {
	out := make(map[int64]match.Result, len(w.Matches))
	for _, item := range w.Matches {
		if item.HasResult() {
			out[item.ID] = item.Result
		}
	}
	return out
}

func (w Week) State(now time.Time, users []user.User) State {
	switch {
	case w.IsFullyResolved() && w.IsScored(users):
		return StateScored
	case w.IsFullyResolved():
		return StateResultsSet
	case w.IsLocked(now):
		return StateLocked
	default:
		return StateOpen
	}
}

func sortMatches(items []match.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].LockoutAt.Equal(items[j].LockoutAt) {
			return items[i].LockoutAt.Before(items[j].LockoutAt)
		}
		return items[i].ID < items[j].ID
	})
}
