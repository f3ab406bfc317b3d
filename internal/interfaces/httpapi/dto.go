package httpapi

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/relation"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type matchDTO struct {
	ID           int64     `json:"id"`
	Week         int       `json:"week"`
	HomeTeam     string    `json:"homeTeam"`
	AwayTeam     string    `json:"awayTeam"`
	LockoutAt    time.Time `json:"lockoutAt"`
	Locked       bool      `json:"locked"`
	Result       string    `json:"result,omitempty"`
	FixtureRefID int64     `json:"fixtureRefId,omitempty"`
}

type weekDTO struct {
	Week          int        `json:"week"`
	State         string     `json:"state"`
	LockoutAt     *time.Time `json:"lockoutAt,omitempty"`
	Locked        bool       `json:"locked"`
	FullyResolved bool       `json:"fullyResolved"`
	CanScore      bool       `json:"canScore"`
	Matches       []matchDTO `json:"matches"`
}

type weekLockDTO struct {
	Week   int  `json:"week"`
	Locked bool `json:"locked"`
}

type predictionDTO struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	MatchID       int64     `json:"matchId"`
	Week          int       `json:"week"`
	Pick          string    `json:"pick"`
	PointsAwarded *int      `json:"pointsAwarded"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type submitPickRequest struct {
	MatchID relation.ID `json:"matchId" validate:"required,gt=0"`
	Pick    string      `json:"pick" validate:"required"`
}

type scoreWeekRequest struct {
	Force  bool `json:"force"`
	Resume bool `json:"resume"`
}

type setResultRequest struct {
	Result string `json:"result" validate:"required"`
}

type resetUsersRequest struct {
	ToWeek int `json:"toWeek" validate:"gte=0"`
}

func toMatchDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:           item.ID,
		Week:         item.Week,
		HomeTeam:     item.HomeTeam,
		AwayTeam:     item.AwayTeam,
		LockoutAt:    item.LockoutAt,
		Locked:       item.Locked,
		Result:       string(item.Result),
		FixtureRefID: item.FixtureRefID,
	}
}

func toMatchDTOs(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toMatchDTO(item))
	}
	return out
}

func toWeekDTO(status usecase.WeekStatus) weekDTO {
	return weekDTO{
		Week:          status.Number,
		State:         string(status.State),
		LockoutAt:     status.LockoutAt,
		Locked:        status.Locked,
		FullyResolved: status.FullyResolved,
		CanScore:      status.CanScore,
		Matches:       toMatchDTOs(status.Matches),
	}
}

func toPredictionDTO(item prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:            item.ID,
		UserID:        item.UserID,
		MatchID:       item.MatchID,
		Week:          item.Week,
		Pick:          string(item.Pick),
		PointsAwarded: item.PointsAwarded,
		UpdatedAt:     item.UpdatedAt,
	}
}
