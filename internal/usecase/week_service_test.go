package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	matchmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/match"
	usermock "github.com/riskibarqy/prediction-league/internal/mocks/domain/user"
)

func futureWeek(number int) []match.Match {
	items := weekMatches(number)
	for i := range items {
		items[i].LockoutAt = testNow.Add(time.Duration(24+i) * time.Hour)
	}
	return items
}

func TestWeekService_IsWeekLocked_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewWeekService(matchRepo, userRepo)
	service.now = func() time.Time { return testNow }

	open := futureWeek(7)
	lockedOne := futureWeek(7)
	lockedOne[2].Locked = true

	matchRepo.On("List", mock.Anything, match.Filter{Week: 7}).Return(open, nil).Once()
	matchRepo.On("List", mock.Anything, match.Filter{Week: 7}).Return(lockedOne, nil).Once()
	userRepo.On("List", mock.Anything).Return([]user.User{}, nil).Twice()

	locked, err := service.IsWeekLocked(ctx, 7)
	if err != nil {
		t.Fatalf("is week locked: %v", err)
	}
	if locked {
		t.Fatalf("expected week with future lockouts to be open")
	}

	locked, err = service.IsWeekLocked(ctx, 7)
	if err != nil {
		t.Fatalf("is week locked: %v", err)
	}
	if !locked {
		t.Fatalf("expected explicit lock flag to lock the week")
	}
}

func TestWeekService_GetWeek_NoSuchWeekUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewWeekService(matchRepo, userRepo)

	matchRepo.On("List", mock.Anything, match.Filter{Week: 42}).Return([]match.Match{}, nil).Once()
	userRepo.On("List", mock.Anything).Return([]user.User{}, nil).Once()

	_, err := service.GetWeek(context.Background(), 42)
	if !errors.Is(err, week.ErrNoSuchWeek) {
		t.Fatalf("expected ErrNoSuchWeek, got %v", err)
	}
}

func TestWeekService_GetWeek_StoreErrorUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)
	service := NewWeekService(matchRepo, userRepo)

	matchRepo.On("List", mock.Anything, match.Filter{Week: 1}).Return(nil, errStoreDown).Maybe()
	userRepo.On("List", mock.Anything).Return([]user.User{}, nil).Maybe()

	_, err := service.GetWeek(context.Background(), 1)
	if !errors.Is(err, ErrStore) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestWeekService_ListWeeks_States(t *testing.T) {
	t.Parallel()

	const h = match.ResultHome
	items := append(weekMatches(1, h, h, h, h, h), weekMatches(2, h, h, h, h, h)...)
	items = append(items, weekMatches(3, h)...)
	items = append(items, futureWeek(4)...)

	store := testStore{
		matches: memoryMatches(items),
		users:   memoryUsers([]user.User{{ID: 1, Name: "A", CurrentWeek: 2}}),
	}
	service := NewWeekService(store.matches, store.users)
	service.now = func() time.Time { return testNow }

	got, err := service.ListWeeks(context.Background())
	if err != nil {
		t.Fatalf("list weeks: %v", err)
	}
	want := []week.State{week.StateScored, week.StateResultsSet, week.StateLocked, week.StateOpen}
	if len(got) != len(want) {
		t.Fatalf("unexpected week count: got=%d want=%d", len(got), len(want))
	}
	for i, status := range got {
		if status.State != want[i] {
			t.Fatalf("unexpected state for week %d: got=%s want=%s", status.Number, status.State, want[i])
		}
	}
	if !got[1].CanScore || got[0].CanScore {
		t.Fatalf("unexpected canScore flags: week1=%v week2=%v", got[0].CanScore, got[1].CanScore)
	}
}
