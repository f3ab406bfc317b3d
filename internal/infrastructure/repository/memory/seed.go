package memory

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

// SeedMatches returns one open week of fixtures for local development.
func SeedMatches(now time.Time) []match.Match {
	lockout := now.UTC().Truncate(time.Hour).Add(72 * time.Hour)
	fixtures := [][2]string{
		{"Arsenal", "Chelsea"},
		{"Liverpool", "Everton"},
		{"Newcastle", "Aston Villa"},
		{"Brighton", "Fulham"},
		{"Brentford", "Wolves"},
	}

	out := make([]match.Match, 0, len(fixtures))
	for i, item := range fixtures {
		out = append(out, match.Match{
			ID:        int64(i + 1),
			Week:      1,
			HomeTeam:  item[0],
			AwayTeam:  item[1],
			LockoutAt: lockout.Add(time.Duration(i) * 2 * time.Hour),
		})
	}
	return out
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: 1, Name: "Alex", CurrentWeek: 1},
		{ID: 2, Name: "Sam", CurrentWeek: 1},
		{ID: 3, Name: "Jo", CurrentWeek: 1},
	}
}
