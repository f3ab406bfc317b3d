package prediction

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

// Filter narrows a prediction listing. Zero values match everything.
type Filter struct {
	Week     int
	UserID   int64
	MatchIDs []int64
}

// Repository exposes prediction persistence.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Prediction, error)
	UpdatePoints(ctx context.Context, id int64, points int) (Prediction, error)
	// Upsert is idempotent on (userID, matchID).
	Upsert(ctx context.Context, userID, matchID int64, week int, pick match.Result) (Prediction, error)
}
