package admincli

import (
	"strings"
	"testing"
	"time"
)

func TestParseSeedFile(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC) // Wednesday
	raw := `
week: 7
matches:
  - {home: Arsenal, away: Chelsea, lockout: "2026-10-17T14:00:00Z", fixture_ref_id: 1001}
  - {home: Liverpool, away: Everton, lockout: "saturday 15:00"}
  - {home: Newcastle, away: Aston Villa, lockout: "2026-10-17T14:00:00+01:00"}
  - {home: Brighton, away: Fulham, lockout: "2026-10-18T16:30:00Z"}
  - {home: Brentford, away: Wolves, lockout: "2026-10-18T16:30:00Z"}
`
	input, err := parseSeedFile(strings.NewReader(raw), now)
	if err != nil {
		t.Fatalf("parse seed file: %v", err)
	}
	if input.Week != 7 || len(input.Matches) != 5 {
		t.Fatalf("unexpected input: week=%d matches=%d", input.Week, len(input.Matches))
	}

	first := input.Matches[0]
	if first.HomeTeam != "Arsenal" || first.FixtureRefID != 1001 || !first.LockoutAt.Equal(time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first match: %+v", first)
	}
	if got := input.Matches[2].LockoutAt; !got.Equal(time.Date(2026, 10, 17, 13, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Fatalf("unexpected offset lockout: %s", got)
	}

	natural := input.Matches[1].LockoutAt
	if natural.Weekday() != time.Saturday || natural.Hour() != 15 || natural.Minute() != 0 {
		t.Fatalf("unexpected natural lockout: %s", natural)
	}
	if !natural.After(now) || natural.Sub(now) > 14*24*time.Hour {
		t.Fatalf("natural lockout out of range: %s", natural)
	}
}

func TestParseSeedFile_Errors(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"unknown field":    "week: 1\nseason: 2026\n",
		"missing lockout":  "week: 1\nmatches:\n  - {home: A, away: B}\n",
		"garbage lockout":  "week: 1\nmatches:\n  - {home: A, away: B, lockout: \"whenever\"}\n",
		"unknown timezone": "week: 1\ntimezone: Mars/Olympus\nmatches: []\n",
	}
	for name, raw := range tests {
		if _, err := parseSeedFile(strings.NewReader(raw), now); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
