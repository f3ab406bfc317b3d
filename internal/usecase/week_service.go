package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
)

// WeekStatus is the derived view of one week.
type WeekStatus struct {
	Number        int           `json:"week"`
	State         week.State    `json:"state"`
	LockoutAt     *time.Time    `json:"lockoutAt,omitempty"`
	Locked        bool          `json:"locked"`
	FullyResolved bool          `json:"fullyResolved"`
	CanScore      bool          `json:"canScore"`
	Matches       []match.Match `json:"matches"`
}

type WeekService struct {
	matchRepo match.Repository
	loader    snapshotLoader
	now       func() time.Time
}

func NewWeekService(matchRepo match.Repository, userRepo user.Repository) *WeekService {
	return &WeekService{
		matchRepo: matchRepo,
		loader:    snapshotLoader{matchRepo: matchRepo, userRepo: userRepo},
		now:       time.Now,
	}
}

func (s *WeekService) GetWeek(ctx context.Context, number int) (WeekStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.GetWeek", attribute.Int("week", number))
	defer span.End()

	if number <= 0 {
		return WeekStatus{}, fmt.Errorf("%w: week must be > 0", ErrInvalidInput)
	}
	snap, err := s.loader.load(ctx, number, false)
	if err != nil {
		recordSpanError(span, err)
		return WeekStatus{}, err
	}
	return buildWeekStatus(snap.week, snap.users, s.now().UTC()), nil
}

func (s *WeekService) IsWeekLocked(ctx context.Context, number int) (bool, error) {
	status, err := s.GetWeek(ctx, number)
	if err != nil {
		return false, err
	}
	return status.Locked, nil
}

func (s *WeekService) IsFullyResolved(ctx context.Context, number int) (bool, error) {
	status, err := s.GetWeek(ctx, number)
	if err != nil {
		return false, err
	}
	return status.FullyResolved, nil
}

func (s *WeekService) CanScore(ctx context.Context, number int) (bool, error) {
	status, err := s.GetWeek(ctx, number)
	if err != nil {
		return false, err
	}
	return status.CanScore, nil
}

// ListWeeks returns every seeded week in ascending order.
func (s *WeekService) ListWeeks(ctx context.Context) ([]WeekStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.ListWeeks")
	defer span.End()

	matches, err := s.matchRepo.List(ctx, match.Filter{})
	if err != nil {
		err = storeErr("list matches", err)
		recordSpanError(span, err)
		return nil, err
	}
	users, err := s.loader.userRepo.List(ctx)
	if err != nil {
		err = storeErr("list users", err)
		recordSpanError(span, err)
		return nil, err
	}

	now := s.now().UTC()
	weeks := week.Group(matches)
	out := make([]WeekStatus, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, buildWeekStatus(w, users, now))
	}
	return out, nil
}

func buildWeekStatus(w week.Week, users []user.User, now time.Time) WeekStatus {
	status := WeekStatus{
		Number:        w.Number,
		State:         w.State(now, users),
		Locked:        w.IsLocked(now),
		FullyResolved: w.IsFullyResolved(),
		CanScore:      w.CanScore(users),
		Matches:       w.Matches,
	}
	if lockout := w.LockoutAt(); !lockout.IsZero() {
		status.LockoutAt = &lockout
	}
	return status
}
