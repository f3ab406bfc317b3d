package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRateLimited           = errors.New("rate limited")
	ErrStore                 = errors.New("store error")
)

// storeErr classifies a repository failure as not-found or a store error.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrStore):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, match.ErrNotFound), errors.Is(err, prediction.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
	}
}
