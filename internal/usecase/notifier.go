package usecase

import (
	"context"
	"time"
)

// WeekScoredEvent announces a finished scoring run.
type WeekScoredEvent struct {
	RunID          string    `json:"runId"`
	Week           int       `json:"week"`
	Forced         bool      `json:"forced"`
	UsersUpdated   int       `json:"usersUpdated"`
	FullHouseNames []string  `json:"fullHouseNames"`
	BlanksNames    []string  `json:"blanksNames"`
	ScoredAt       time.Time `json:"scoredAt"`
}

// ScoringNotifier delivers newsworthy scoring events downstream.
type ScoringNotifier interface {
	PublishWeekScored(ctx context.Context, event WeekScoredEvent) error
}
