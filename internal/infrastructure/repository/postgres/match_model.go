package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID           int64          `db:"id,readonly"`
	Week         int            `db:"week"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	LockoutAt    time.Time      `db:"lockout_at"`
	Locked       bool           `db:"locked"`
	Result       sql.NullString `db:"result"`
	FixtureRefID sql.NullInt64  `db:"fixture_ref_id"`
	CreatedAt    time.Time      `db:"created_at,readonly"`
	UpdatedAt    time.Time      `db:"updated_at,readonly"`
}
