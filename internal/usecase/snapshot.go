package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
)

// weekSnapshot is the state one invocation reads for a week. It is never
// reused across invocations.
type weekSnapshot struct {
	week        week.Week
	predictions []prediction.Prediction
	users       []user.User
}

type snapshotLoader struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	userRepo       user.Repository
}

// load fetches matches, users and optionally predictions concurrently.
func (l snapshotLoader) load(ctx context.Context, number int, withPredictions bool) (weekSnapshot, error) {
	var (
		matches     []match.Match
		users       []user.User
		predictions []prediction.Prediction
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := l.matchRepo.List(ctx, match.Filter{Week: number})
		if err != nil {
			return storeErr("list matches", err)
		}
		matches = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := l.userRepo.List(ctx)
		if err != nil {
			return storeErr("list users", err)
		}
		users = items
		return nil
	})
	if withPredictions {
		p.Go(func(ctx context.Context) error {
			items, err := l.predictionRepo.List(ctx, prediction.Filter{Week: number})
			if err != nil {
				return storeErr("list predictions", err)
			}
			predictions = items
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return weekSnapshot{}, fmt.Errorf("load week %d: %w", number, err)
	}

	w, err := week.New(number, matches)
	if err != nil {
		return weekSnapshot{}, err
	}
	return weekSnapshot{week: w, predictions: predictions, users: users}, nil
}
