package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/prediction"
	usermock "github.com/riskibarqy/prediction-league/internal/mocks/domain/user"
)

func TestPredictionService_SubmitPick_UpsertsBeforeLockout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := memory.NewPredictionRepository(nil)
	service := NewPredictionService(
		memoryMatches(futureWeek(9)),
		predictions,
		memoryUsers([]user.User{{ID: 4, Name: "Kim", CurrentWeek: 9}}),
	)
	service.now = func() time.Time { return testNow }

	first, err := service.SubmitPick(ctx, SubmitPickInput{UserID: 4, MatchID: 901, Pick: "home"})
	if err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	second, err := service.SubmitPick(ctx, SubmitPickInput{UserID: 4, MatchID: 901, Pick: "DRAW"})
	if err != nil {
		t.Fatalf("resubmit pick: %v", err)
	}
	if first.ID != second.ID || second.Pick != match.ResultDraw || second.Week != 9 {
		t.Fatalf("resubmission must replace the prior pick: first=%+v second=%+v", first, second)
	}

	items, err := service.ListUserPredictions(ctx, 4, 9)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected prediction count: got=%d want=1", len(items))
	}
}

func TestPredictionService_SubmitPick_RejectsInvalidPickUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewPredictionService(matchRepo, predictionRepo, userRepo)

	_, err := service.SubmitPick(context.Background(), SubmitPickInput{UserID: 1, MatchID: 1, Pick: "HOME_WIN"})
	if !errors.Is(err, prediction.ErrInvalidPick) {
		t.Fatalf("expected ErrInvalidPick, got %v", err)
	}
}

func TestPredictionService_SubmitPick_LockedWeekUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewPredictionService(matchRepo, predictionRepo, userRepo)
	service.now = func() time.Time { return testNow }

	items := futureWeek(3)
	items[0].LockoutAt = testNow.Add(-time.Minute)

	userRepo.On("Get", mock.Anything, int64(1)).Return(user.User{ID: 1}, true, nil).Once()
	matchRepo.On("Get", mock.Anything, items[4].ID).Return(items[4], true, nil).Once()
	matchRepo.On("List", mock.Anything, match.Filter{Week: 3}).Return(items, nil).Once()

	_, err := service.SubmitPick(ctx, SubmitPickInput{UserID: 1, MatchID: items[4].ID, Pick: "AWAY"})
	if !errors.Is(err, week.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	predictionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPredictionService_SubmitPick_UnknownMatchUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewPredictionService(matchRepo, predictionRepo, userRepo)

	userRepo.On("Get", mock.Anything, int64(1)).Return(user.User{ID: 1}, true, nil).Once()
	matchRepo.On("Get", mock.Anything, int64(77)).Return(match.Match{}, false, nil).Once()

	_, err := service.SubmitPick(context.Background(), SubmitPickInput{UserID: 1, MatchID: 77, Pick: "HOME"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
