package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) List(ctx context.Context, filter prediction.Filter) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		WhereIf(filter.Week > 0, qb.Eq("week", filter.Week)).
		WhereIf(filter.UserID > 0, qb.Eq("user_id", filter.UserID)).
		WhereIf(len(filter.MatchIDs) > 0, qb.Expr("match_id = ANY(?)", pq.Array(filter.MatchIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions week=%d user=%d: %w", filter.Week, filter.UserID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) UpdatePoints(ctx context.Context, id int64, points int) (prediction.Prediction, error) {
	query, args, err := qb.Update("predictions").
		Set("points_awarded", points).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build update prediction points query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, fmt.Errorf("%w: prediction id=%d", prediction.ErrNotFound, id)
		}
		return prediction.Prediction{}, fmt.Errorf("update prediction points id=%d: %w", id, err)
	}
	return predictionFromRow(row), nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, userID, matchID int64, week int, pick match.Result) (prediction.Prediction, error) {
	query, args, err := qb.InsertInto("predictions").
		Columns("user_id", "match_id", "week", "pick").
		Values(userID, matchID, week, string(pick)).
		Suffix(`ON CONFLICT (user_id, match_id) DO UPDATE
SET pick = EXCLUDED.pick,
    week = EXCLUDED.week,
    updated_at = NOW()
RETURNING *`).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build upsert prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction user=%d match=%d: %w", userID, matchID, err)
	}
	return predictionFromRow(row), nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	item := prediction.Prediction{
		ID:        row.ID,
		UserID:    row.UserID.Int64(),
		MatchID:   row.MatchID.Int64(),
		Week:      row.Week,
		Pick:      match.Result(row.Pick),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.PointsAwarded.Valid {
		points := int(row.PointsAwarded.Int64)
		item.PointsAwarded = &points
	}
	return item
}
