package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id int64) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("select user id=%d: %w", id, err)
	}
	return userFromRow(row), true, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select("*").From("users").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, update user.Update) (user.User, error) {
	builder := qb.Update("users").
		SetIf(update.Points != nil, "points", func() any { return *update.Points }).
		SetIf(update.CorrectResults != nil, "correct_results", func() any { return *update.CorrectResults }).
		SetIf(update.IncorrectResults != nil, "incorrect_results", func() any { return *update.IncorrectResults }).
		SetIf(update.FullHouses != nil, "full_houses", func() any { return *update.FullHouses }).
		SetIf(update.Blanks != nil, "blanks", func() any { return *update.Blanks }).
		SetIf(update.CurrentWeek != nil, "current_week", func() any { return *update.CurrentWeek })
	if builder.Empty() {
		item, exists, err := r.Get(ctx, id)
		if err != nil {
			return user.User{}, err
		}
		if !exists {
			return user.User{}, fmt.Errorf("%w: user id=%d", user.ErrNotFound, id)
		}
		return item, nil
	}

	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build update user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, fmt.Errorf("%w: user id=%d", user.ErrNotFound, id)
		}
		return user.User{}, fmt.Errorf("update user id=%d: %w", id, err)
	}
	return userFromRow(row), nil
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:               row.ID,
		Name:             row.Name,
		Points:           row.Points,
		CorrectResults:   row.CorrectResults,
		IncorrectResults: row.IncorrectResults,
		FullHouses:       row.FullHouses,
		Blanks:           row.Blanks,
		CurrentWeek:      row.CurrentWeek,
	}
}
