package admincli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// seedFile is the on-disk shape of a week for seed-week. Lockouts accept
// RFC 3339 or phrases like "saturday 15:00" resolved against now.
type seedFile struct {
	Week     int             `yaml:"week"`
	Timezone string          `yaml:"timezone"`
	Matches  []seedFileMatch `yaml:"matches"`
}

type seedFileMatch struct {
	Home         string `yaml:"home"`
	Away         string `yaml:"away"`
	Lockout      string `yaml:"lockout"`
	FixtureRefID int64  `yaml:"fixture_ref_id"`
}

func newLockoutParser() *when.Parser {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return parser
}

func parseSeedFile(r io.Reader, now time.Time) (usecase.SeedWeekInput, error) {
	var file seedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return usecase.SeedWeekInput{}, fmt.Errorf("decode seed file: %w", err)
	}

	loc := time.UTC
	if tz := strings.TrimSpace(file.Timezone); tz != "" {
		loaded, err := time.LoadLocation(tz)
		if err != nil {
			return usecase.SeedWeekInput{}, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		loc = loaded
	}

	parser := newLockoutParser()
	input := usecase.SeedWeekInput{Week: file.Week, Matches: make([]usecase.SeedMatchInput, 0, len(file.Matches))}
	for i, item := range file.Matches {
		lockout, err := parseLockout(parser, item.Lockout, now.In(loc))
		if err != nil {
			return usecase.SeedWeekInput{}, fmt.Errorf("match %d: %w", i+1, err)
		}
		input.Matches = append(input.Matches, usecase.SeedMatchInput{
			HomeTeam:     item.Home,
			AwayTeam:     item.Away,
			LockoutAt:    lockout.UTC(),
			FixtureRefID: item.FixtureRefID,
		})
	}
	return input, nil
}

func parseLockout(parser *when.Parser, raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("lockout is required")
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}

	result, err := parser.Parse(strings.ToLower(raw), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse lockout %q: %w", raw, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("unrecognised lockout %q", raw)
	}
	return result.Time.Truncate(time.Minute), nil
}
