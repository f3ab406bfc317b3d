package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

var ErrFixtureNotFound = errors.New("fixture not found")

// ExternalFixture is the subset of an upstream fixture needed to settle a match.
type ExternalFixture struct {
	ID        int64
	Status    string
	HomeScore *int
	AwayScore *int
}

// IsFinal reports whether the upstream status is settled.
func (f ExternalFixture) IsFinal() bool {
	switch strings.ToUpper(strings.TrimSpace(f.Status)) {
	case "FINISHED", "AWARDED":
		return true
	default:
		return false
	}
}

// FixtureProvider reads fixtures from the upstream football API. Implementations
// pace their own calls; callers must invoke it sequentially.
type FixtureProvider interface {
	GetFixture(ctx context.Context, fixtureID int64) (ExternalFixture, error)
}

type ResolutionStatus string

const (
	ResolutionAlreadyScored ResolutionStatus = "already_scored"
	ResolutionNoAPIID       ResolutionStatus = "no_api_id"
	ResolutionNotFinished   ResolutionStatus = "not_finished"
	ResolutionResultSet     ResolutionStatus = "result_set"
	ResolutionAPIError      ResolutionStatus = "api_error"
	ResolutionRateLimited   ResolutionStatus = "rate_limited"
	ResolutionStoreError    ResolutionStatus = "store_error"
)

// MatchResolution reports what happened to one match during acquisition.
type MatchResolution struct {
	MatchID      int64            `json:"matchId"`
	FixtureRefID int64            `json:"fixtureRefId,omitempty"`
	Status       ResolutionStatus `json:"status"`
	Result       match.Result     `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
}

type ResultService struct {
	matchRepo match.Repository
	provider  FixtureProvider
	metrics   Metrics
	logger    *logging.Logger
}

// NewResultService accepts a nil provider when automated lookup is disabled.
func NewResultService(matchRepo match.Repository, provider FixtureProvider, metrics Metrics, logger *logging.Logger) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		matchRepo: matchRepo,
		provider:  provider,
		metrics:   metricsOrNoop(metrics),
		logger:    logger.Named("results"),
	}
}

// ResolveAll settles matches one at a time; a failure on one match never
// stops the others.
func (s *ResultService) ResolveAll(ctx context.Context, matches []match.Match) []MatchResolution {
	out := make([]MatchResolution, 0, len(matches))
	for _, item := range matches {
		if ctx.Err() != nil {
			out = append(out, MatchResolution{
				MatchID:      item.ID,
				FixtureRefID: item.FixtureRefID,
				Status:       ResolutionAPIError,
				Error:        ctx.Err().Error(),
			})
			continue
		}
		out = append(out, s.Resolve(ctx, item))
	}
	return out
}

// Resolve looks up one match upstream and records its result when final.
func (s *ResultService) Resolve(ctx context.Context, item match.Match) MatchResolution {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Resolve",
		attribute.Int64("match_id", item.ID),
		attribute.Int64("fixture_ref_id", item.FixtureRefID),
	)
	defer span.End()

	res := s.resolve(ctx, item)
	span.SetAttributes(attribute.String("status", string(res.Status)))
	s.metrics.ObserveResolution(res.Status)

	switch res.Status {
	case ResolutionResultSet:
		s.logger.InfoContext(ctx, "match result set", "match_id", item.ID, "fixture_ref_id", item.FixtureRefID, "result", string(res.Result))
	case ResolutionAPIError, ResolutionRateLimited, ResolutionStoreError:
		s.logger.WarnContext(ctx, "match resolution failed", "match_id", item.ID, "status", string(res.Status), "error", res.Error)
	}
	return res
}

func (s *ResultService) resolve(ctx context.Context, item match.Match) MatchResolution {
	res := MatchResolution{MatchID: item.ID, FixtureRefID: item.FixtureRefID}

	if item.HasResult() {
		res.Status = ResolutionAlreadyScored
		res.Result = item.Result
		return res
	}
	if !item.HasFixtureRef() {
		res.Status = ResolutionNoAPIID
		return res
	}
	if s.provider == nil {
		res.Status = ResolutionAPIError
		res.Error = "fixture provider is disabled"
		return res
	}

	fixture, err := s.provider.GetFixture(ctx, item.FixtureRefID)
	switch {
	case err == nil:
	case errors.Is(err, ErrFixtureNotFound):
		res.Status = ResolutionNotFinished
		return res
	case errors.Is(err, ErrRateLimited):
		res.Status = ResolutionRateLimited
		res.Error = err.Error()
		return res
	default:
		res.Status = ResolutionAPIError
		res.Error = err.Error()
		return res
	}

	if !fixture.IsFinal() || fixture.HomeScore == nil || fixture.AwayScore == nil {
		res.Status = ResolutionNotFinished
		return res
	}

	result := match.ResultFromScore(*fixture.HomeScore, *fixture.AwayScore)
	locked := true
	if _, err := s.matchRepo.Update(ctx, item.ID, match.Update{Result: &result, Locked: &locked}); err != nil {
		res.Status = ResolutionStoreError
		res.Error = storeErr("update match", err).Error()
		return res
	}

	res.Status = ResolutionResultSet
	res.Result = result
	return res
}

// SetMatchResult records an administrator-supplied result and locks the match.
func (s *ResultService) SetMatchResult(ctx context.Context, matchID int64, rawResult string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SetMatchResult", attribute.Int64("match_id", matchID))
	defer span.End()

	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be > 0", ErrInvalidInput)
	}
	result, err := match.ParseResult(rawResult)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	locked := true
	updated, err := s.matchRepo.Update(ctx, matchID, match.Update{Result: &result, Locked: &locked})
	if err != nil {
		err = storeErr("update match", err)
		recordSpanError(span, err)
		return match.Match{}, err
	}

	s.logger.InfoContext(ctx, "match result set manually", "match_id", matchID, "week", updated.Week, "result", string(result))
	return updated, nil
}
