package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
)

type SubmitPickInput struct {
	UserID  int64
	MatchID int64
	Pick    string
}

type PredictionService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	userRepo       user.Repository
	now            func() time.Time
}

func NewPredictionService(matchRepo match.Repository, predictionRepo prediction.Repository, userRepo user.Repository) *PredictionService {
	return &PredictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

// SubmitPick creates or replaces the user's pick for a match until the
// match's week locks.
func (s *PredictionService) SubmitPick(ctx context.Context, input SubmitPickInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPick",
		attribute.Int64("user_id", input.UserID),
		attribute.Int64("match_id", input.MatchID),
	)
	defer span.End()

	pick, err := prediction.ParsePick(input.Pick)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if input.UserID <= 0 || input.MatchID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: user id and match id are required", ErrInvalidInput)
	}

	if _, exists, err := s.userRepo.Get(ctx, input.UserID); err != nil {
		return prediction.Prediction{}, storeErr("get user", err)
	} else if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: user=%d", ErrNotFound, input.UserID)
	}

	target, exists, err := s.matchRepo.Get(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, storeErr("get match", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%d", ErrNotFound, input.MatchID)
	}

	siblings, err := s.matchRepo.List(ctx, match.Filter{Week: target.Week})
	if err != nil {
		return prediction.Prediction{}, storeErr("list week matches", err)
	}
	w, err := week.New(target.Week, siblings)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if w.IsLocked(s.now().UTC()) {
		return prediction.Prediction{}, fmt.Errorf("%w: week=%d", week.ErrLocked, target.Week)
	}

	saved, err := s.predictionRepo.Upsert(ctx, input.UserID, input.MatchID, target.Week, pick)
	if err != nil {
		err = storeErr("upsert prediction", err)
		recordSpanError(span, err)
		return prediction.Prediction{}, err
	}
	return saved, nil
}

// ListUserPredictions returns a user's picks, optionally for one week.
func (s *PredictionService) ListUserPredictions(ctx context.Context, userID int64, weekNumber int) ([]prediction.Prediction, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.predictionRepo.List(ctx, prediction.Filter{UserID: userID, Week: weekNumber})
	if err != nil {
		return nil, storeErr("list predictions", err)
	}
	return items, nil
}
