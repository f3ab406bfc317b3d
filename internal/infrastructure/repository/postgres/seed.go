package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

// BootstrapSeed loads the development users and first week into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users`); err != nil {
		return fmt.Errorf("count users for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range memory.SeedUsers() {
		query, args, err := qb.InsertInto("users").
			Columns("id", "name", "current_week").
			Values(u.ID, u.Name, u.CurrentWeek).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build seed user %d query: %w", u.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}

	for _, m := range memory.SeedMatches(now) {
		row := matchTableModel{
			Week:      m.Week,
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			LockoutAt: m.LockoutAt,
		}
		query, args, err := qb.InsertModel("matches", row, "")
		if err != nil {
			return fmt.Errorf("build seed match %s-%s query: %w", m.HomeTeam, m.AwayTeam, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed match %s-%s: %w", m.HomeTeam, m.AwayTeam, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))`); err != nil {
		return fmt.Errorf("advance users sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
