package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		WhereIf(filter.Week > 0, qb.Eq("week", filter.Week)).
		OrderBy("week", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches week=%d: %w", filter.Week, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Get(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match id=%d: %w", id, err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Update(ctx context.Context, id int64, update match.Update) (match.Match, error) {
	builder := qb.Update("matches").
		SetIf(update.Result != nil, "result", func() any { return nullableString(string(*update.Result)) }).
		SetIf(update.Locked != nil, "locked", func() any { return *update.Locked })
	if builder.Empty() {
		item, exists, err := r.Get(ctx, id)
		if err != nil {
			return match.Match{}, err
		}
		if !exists {
			return match.Match{}, fmt.Errorf("%w: match id=%d", match.ErrNotFound, id)
		}
		return item, nil
	}

	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build update match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, fmt.Errorf("%w: match id=%d", match.ErrNotFound, id)
		}
		return match.Match{}, fmt.Errorf("update match id=%d: %w", id, err)
	}
	return matchFromRow(row), nil
}

func (r *MatchRepository) Create(ctx context.Context, items []match.Match) ([]match.Match, error) {
	if len(items) == 0 {
		return nil, nil
	}

	builder := qb.InsertInto("matches").
		Columns("week", "home_team", "away_team", "lockout_at", "locked", "result", "fixture_ref_id")
	for _, item := range items {
		builder.Values(
			item.Week,
			item.HomeTeam,
			item.AwayTeam,
			item.LockoutAt.UTC(),
			item.Locked,
			nullableString(string(item.Result)),
			nullableInt64(item.FixtureRefID),
		)
	}
	query, args, err := builder.Suffix("RETURNING *").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("insert matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		Week:         row.Week,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		LockoutAt:    row.LockoutAt.UTC(),
		Locked:       row.Locked,
		Result:       resultFromColumn(row.Result),
		FixtureRefID: nullInt64ToInt64(row.FixtureRefID),
	}
}

// resultFromColumn drops values outside HOME/DRAW/AWAY so a bad row reads as unresolved.
func resultFromColumn(value sql.NullString) match.Result {
	if !value.Valid {
		return ""
	}
	result, err := match.ParseResult(value.String)
	if err != nil {
		return ""
	}
	return result
}
