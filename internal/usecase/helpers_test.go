package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
)

var testNow = time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)

type testStore struct {
	matches     *memory.MatchRepository
	predictions *memory.PredictionRepository
	users       *memory.UserRepository
}

func weekMatches(number int, results ...match.Result) []match.Match {
	out := make([]match.Match, 0, 5)
	for i := 1; i <= 5; i++ {
		item := match.Match{
			ID:        int64(number*100 + i),
			Week:      number,
			HomeTeam:  "Home",
			AwayTeam:  "Away",
			LockoutAt: testNow.Add(-48 * time.Hour),
		}
		if i <= len(results) {
			item.Result = results[i-1]
			item.Locked = results[i-1] != ""
		}
		out = append(out, item)
	}
	return out
}

func picksFor(userID int64, number int, picks ...match.Result) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(picks))
	for i, pick := range picks {
		out = append(out, prediction.Prediction{
			ID:      userID*1000 + int64(number*10+i+1),
			UserID:  userID,
			MatchID: int64(number*100 + i + 1),
			Week:    number,
			Pick:    pick,
		})
	}
	return out
}

// weekFiveStore is the season state used by the scoring scenarios: week 5 is
// fully resolved, U1 predicted everything, U2 got two right.
func weekFiveStore() testStore {
	const h, d, a = match.ResultHome, match.ResultDraw, match.ResultAway

	predictions := append(picksFor(1, 5, h, d, a, h, h), picksFor(2, 5, a, a, a, h, d)...)
	return testStore{
		matches:     memory.NewMatchRepository(weekMatches(5, h, d, a, h, h)),
		predictions: memory.NewPredictionRepository(predictions),
		users: memory.NewUserRepository([]user.User{
			{ID: 1, Name: "U1", Points: 3, CorrectResults: 3, IncorrectResults: 2, CurrentWeek: 5},
			{ID: 2, Name: "U2", CurrentWeek: 5},
			{ID: 3, Name: "U3", CurrentWeek: 5},
		}),
	}
}

func (s testStore) scoringService(notifier ScoringNotifier) *ScoringService {
	return NewScoringService(s.matches, s.predictions, s.users, notifier, nil, nil)
}

func mustUser(store testStore, id int64) user.User {
	item, ok, err := store.users.Get(context.Background(), id)
	if err != nil || !ok {
		panic("missing test user")
	}
	return item
}

var errStoreDown = errors.New("connection reset by peer")

// flakyUserRepository fails updates for selected users.
type flakyUserRepository struct {
	user.Repository
	mu          sync.Mutex
	failTotals  map[int64]bool
	failCursors map[int64]bool
}

func (r *flakyUserRepository) Update(ctx context.Context, id int64, update user.Update) (user.User, error) {
	r.mu.Lock()
	failTotals, failCursor := r.failTotals[id], r.failCursors[id]
	r.mu.Unlock()

	if failTotals && update.Points != nil {
		return user.User{}, errStoreDown
	}
	if failCursor && update.CurrentWeek != nil {
		return user.User{}, errStoreDown
	}
	return r.Repository.Update(ctx, id, update)
}

type flakyPredictionRepository struct {
	prediction.Repository
	failIDs map[int64]bool
}

func (r *flakyPredictionRepository) UpdatePoints(ctx context.Context, id int64, points int) (prediction.Prediction, error) {
	if r.failIDs[id] {
		return prediction.Prediction{}, errStoreDown
	}
	return r.Repository.UpdatePoints(ctx, id, points)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []WeekScoredEvent
	err    error
}

func (n *recordingNotifier) PublishWeekScored(_ context.Context, event WeekScoredEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func memoryMatches(items []match.Match) *memory.MatchRepository {
	return memory.NewMatchRepository(items)
}

func memoryUsers(items []user.User) *memory.UserRepository {
	return memory.NewUserRepository(items)
}

func intPtr(v int) *int {
	return &v
}
