package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/relation"
)

type predictionTableModel struct {
	ID            int64         `db:"id"`
	UserID        relation.ID   `db:"user_id"`
	MatchID       relation.ID   `db:"match_id"`
	Week          int           `db:"week"`
	Pick          string        `db:"pick"`
	PointsAwarded sql.NullInt64 `db:"points_awarded"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}
