package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
)

func autoScoreFixture(t *testing.T) (testStore, *stubFixtureProvider, *AutoScoreService) {
	t.Helper()

	const h, d, a = match.ResultHome, match.ResultDraw, match.ResultAway
	week4 := weekMatches(4)
	week5 := weekMatches(5, h, d, a)
	week5[3].FixtureRefID = 5004
	week5[4].FixtureRefID = 5005

	store := testStore{
		matches:     memory.NewMatchRepository(append(week4, week5...)),
		predictions: memory.NewPredictionRepository(append(picksFor(1, 5, h, d, a, h, h), picksFor(2, 5, a, a, a, h, d)...)),
		users: memory.NewUserRepository([]user.User{
			{ID: 1, Name: "U1", CurrentWeek: 5},
			{ID: 2, Name: "U2", CurrentWeek: 5},
		}),
	}
	provider := &stubFixtureProvider{fixtures: map[int64]ExternalFixture{
		5004: finished(5004, 1, 0),
		5005: finished(5005, 3, 1),
	}}
	results := NewResultService(store.matches, provider, nil, nil)
	service := NewAutoScoreService(store.matches, results, store.scoringService(nil), nil, nil)
	return store, provider, service
}

func TestAutoScoreService_Tick_ResolvesAndScores(t *testing.T) {
	t.Parallel()

	store, provider, service := autoScoreFixture(t)

	got, err := service.Tick(context.Background(), ScheduledTrusted("test"))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got.Week != 5 || got.MatchesChecked != 2 || got.ResultsSet != 2 {
		t.Fatalf("unexpected tick summary: %+v", got)
	}
	if !got.WeekScored || got.Scoring == nil || got.Scoring.UsersUpdated != 2 {
		t.Fatalf("expected week to be scored, got %+v", got)
	}
	if got.Trigger != InvocationScheduled || len(got.Log) == 0 {
		t.Fatalf("unexpected trigger or empty log: %+v", got)
	}
	if u1 := mustUser(store, 1); u1.Points != 10 || u1.CurrentWeek != 6 {
		t.Fatalf("unexpected U1 after tick: %+v", u1)
	}

	again, err := service.Tick(context.Background(), ScheduledTrusted("test"))
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if again.Week != 0 || again.WeekScored || again.MatchesChecked != 0 {
		t.Fatalf("second tick must be idle, got %+v", again)
	}
	if len(provider.calls) != 2 {
		t.Fatalf("unexpected api calls: %v", provider.calls)
	}
	if u1 := mustUser(store, 1); u1.Points != 10 {
		t.Fatalf("second tick changed totals: %+v", u1)
	}
}

func TestAutoScoreService_Tick_DefersWhenStillUnresolved(t *testing.T) {
	t.Parallel()

	store, provider, service := autoScoreFixture(t)
	provider.fixtures[5005] = ExternalFixture{ID: 5005, Status: "TIMED"}

	got, err := service.Tick(context.Background(), ScheduledTrusted("test"))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got.ResultsSet != 1 || got.WeekScored || got.Scoring != nil {
		t.Fatalf("unexpected tick summary: %+v", got)
	}
	if u1 := mustUser(store, 1); u1.CurrentWeek != 5 {
		t.Fatalf("week must not be scored yet: %+v", u1)
	}
}

func TestAutoScoreService_Tick_SkipsOpenWeek(t *testing.T) {
	t.Parallel()

	store, provider, service := autoScoreFixture(t)
	service.now = func() time.Time { return testNow }

	week6 := weekMatches(6)
	for i := range week6 {
		week6[i].LockoutAt = testNow.Add(72 * time.Hour)
		week6[i].FixtureRefID = int64(6001 + i)
	}
	if _, err := store.matches.Create(context.Background(), week6); err != nil {
		t.Fatalf("seed week 6: %v", err)
	}

	got, err := service.Tick(context.Background(), ScheduledTrusted("test"))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got.Week != 5 || !got.WeekScored {
		t.Fatalf("unexpected tick summary: got week=%d scored=%t want week=5 scored=true", got.Week, got.WeekScored)
	}
	for _, id := range provider.calls {
		if id >= 6001 {
			t.Fatalf("open week fixture %d must not be looked up: calls=%v", id, provider.calls)
		}
	}
}

func TestAutoScoreService_Tick_RateLimitedMatchLeftForNextRun(t *testing.T) {
	t.Parallel()

	_, provider, service := autoScoreFixture(t)
	provider.errs = map[int64]error{5004: ErrRateLimited}

	got, err := service.Tick(context.Background(), ScheduledTrusted("test"))
	if err != nil {
		t.Fatalf("rate limit must not fail the tick: %v", err)
	}
	if got.Matches[0].Status != ResolutionRateLimited || got.WeekScored {
		t.Fatalf("unexpected tick summary: %+v", got)
	}
}

func TestAutoScoreService_Tick_RejectsZeroInvocation(t *testing.T) {
	t.Parallel()

	_, provider, service := autoScoreFixture(t)
	if _, err := service.Tick(context.Background(), Invocation{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("unauthorized tick must not call the api: %v", provider.calls)
	}
}

func TestAutoScoreService_Tick_ManualInvocation(t *testing.T) {
	t.Parallel()

	_, _, service := autoScoreFixture(t)
	inv, err := NewAdminAuthenticator("s3cret").Authenticate("ops", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	got, err := service.Tick(context.Background(), inv)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got.Trigger != InvocationManual {
		t.Fatalf("unexpected trigger: got=%s want=%s", got.Trigger, InvocationManual)
	}
}
