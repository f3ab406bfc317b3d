package usecase

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

type LeaderboardService struct {
	userRepo user.Repository
}

func NewLeaderboardService(userRepo user.Repository) *LeaderboardService {
	return &LeaderboardService{userRepo: userRepo}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]leaderboard.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		err = storeErr("list users", err)
		recordSpanError(span, err)
		return nil, err
	}
	return leaderboard.Rank(users), nil
}
