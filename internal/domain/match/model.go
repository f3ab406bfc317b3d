package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Result is the authoritative outcome of a match. The zero value means unset.
type Result string

const (
	ResultHome Result = "HOME"
	ResultDraw Result = "DRAW"
	ResultAway Result = "AWAY"
)

var (
	ErrInvalidResult = errors.New("invalid match result")
	ErrNotFound      = errors.New("match not found")
)

// ParseResult accepts HOME, DRAW or AWAY in any case.
func ParseResult(value string) (Result, error) {
	result := Result(strings.ToUpper(strings.TrimSpace(value)))
	if !result.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, value)
	}
	return result, nil
}

func (r Result) Valid() bool {
	switch r {
	case ResultHome, ResultDraw, ResultAway:
		return true
	default:
		return false
	}
}

// ResultFromScore derives the outcome from a final score.
func ResultFromScore(home, away int) Result {
	switch {
	case home > away:
		return ResultHome
	case away > home:
		return ResultAway
	default:
		return ResultDraw
	}
}

// Match is one fixture inside a prediction week.
type Match struct {
	ID           int64
	Week         int
	HomeTeam     string
	AwayTeam     string
	LockoutAt    time.Time
	Locked       bool
	Result       Result
	FixtureRefID int64
}

func (m Match) HasResult() bool {
	return m.Result.Valid()
}

func (m Match) HasFixtureRef() bool {
	return m.FixtureRefID > 0
}

// IsLockedAt reports whether picks for the match are frozen at now.
func (m Match) IsLockedAt(now time.Time) bool {
	if m.Locked {
		return true
	}
	return !m.LockoutAt.IsZero() && !now.Before(m.LockoutAt)
}
