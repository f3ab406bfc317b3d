package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// TickResult summarises one automation pass.
type TickResult struct {
	RunID          string            `json:"runId"`
	Trigger        InvocationKind    `json:"trigger"`
	Week           int               `json:"week"`
	MatchesChecked int               `json:"matchesChecked"`
	ResultsSet     int               `json:"resultsSet"`
	WeekScored     bool              `json:"weekScored"`
	Matches        []MatchResolution `json:"matches"`
	Scoring        *ScoringResult    `json:"scoring,omitempty"`
	Log            []string          `json:"log"`
}

func (r *TickResult) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// AutoScoreService finds the latest week that can make progress, settles its
// matches from the fixture API and scores it once every result is known.
type AutoScoreService struct {
	matchRepo match.Repository
	results   *ResultService
	scoring   *ScoringService
	metrics   Metrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewAutoScoreService(matchRepo match.Repository, results *ResultService, scoring *ScoringService, metrics Metrics, logger *logging.Logger) *AutoScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AutoScoreService{
		matchRepo: matchRepo,
		results:   results,
		scoring:   scoring,
		metrics:   metricsOrNoop(metrics),
		logger:    logger.Named("autoscore"),
		now:       time.Now,
	}
}

// Tick processes at most one week. Repeating it against a scored week is a no-op.
func (s *AutoScoreService) Tick(ctx context.Context, inv Invocation) (TickResult, error) {
	if err := requireInvocation(inv); err != nil {
		return TickResult{}, err
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.AutoScoreService.Tick",
		attribute.String("trigger", string(inv.Kind())),
		attribute.String("actor", inv.Actor()),
	)
	defer span.End()

	startedAt := s.now()
	result := TickResult{
		RunID:   uuid.NewString(),
		Trigger: inv.Kind(),
		Matches: []MatchResolution{},
		Log:     []string{},
	}
	logger := s.logger.With("run_id", result.RunID, "trigger", string(inv.Kind()), "actor", inv.Actor())
	defer func() {
		s.metrics.ObserveTick(inv.Kind(), s.now().Sub(startedAt), result.WeekScored)
	}()

	matches, err := s.matchRepo.List(ctx, match.Filter{})
	if err != nil {
		err = storeErr("list matches", err)
		recordSpanError(span, err)
		return result, err
	}

	target, ok := latestAutomatableWeek(week.Group(matches), startedAt)
	if !ok {
		result.logf("no locked week with unresolved matches carrying a fixture reference")
		logger.InfoContext(ctx, "autoscore tick idle")
		return result, nil
	}
	result.Week = target.Number
	span.SetAttributes(attribute.Int("week", target.Number))
	result.logf("week %d selected: %d unresolved match(es)", target.Number, len(target.Unresolved()))

	resolutions := s.results.ResolveAll(ctx, target.Unresolved())
	resolved := make(map[int64]match.Result, len(resolutions))
	for _, item := range resolutions {
		result.Matches = append(result.Matches, item)
		result.MatchesChecked++
		switch item.Status {
		case ResolutionResultSet:
			result.ResultsSet++
			resolved[item.MatchID] = item.Result
			result.logf("match %d: result set to %s", item.MatchID, item.Result)
		case ResolutionAPIError, ResolutionRateLimited, ResolutionStoreError:
			result.logf("match %d: %s (%s)", item.MatchID, item.Status, item.Error)
		default:
			result.logf("match %d: %s", item.MatchID, item.Status)
		}
	}

	for i := range target.Matches {
		if r, ok := resolved[target.Matches[i].ID]; ok {
			target.Matches[i].Result = r
		}
	}
	if !target.IsFullyResolved() {
		result.logf("week %d still has %d unresolved match(es); scoring deferred", target.Number, len(target.Unresolved()))
		logger.InfoContext(ctx, "autoscore tick finished", "week", target.Number, "checked", result.MatchesChecked, "results_set", result.ResultsSet)
		return result, nil
	}

	scored, err := s.scoring.ScoreWeek(ctx, target.Number, ScoreOptions{})
	switch {
	case err == nil:
		result.Scoring = &scored
		result.WeekScored = scored.Status == ScoringStatusScored || scored.Status == ScoringStatusPartial
		result.logf("week %d scored: status=%s users=%d predictions=%d", target.Number, scored.Status, scored.UsersUpdated, scored.PredictionsUpdated)
	case errors.Is(err, week.ErrAlreadyScored):
		result.logf("week %d already scored; nothing to do", target.Number)
	default:
		recordSpanError(span, err)
		result.logf("week %d scoring failed: %v", target.Number, err)
		logger.ErrorContext(ctx, "autoscore scoring failed", "week", target.Number, "error", err)
		return result, fmt.Errorf("score week %d: %w", target.Number, err)
	}

	logger.InfoContext(ctx, "autoscore tick finished",
		"week", target.Number,
		"checked", result.MatchesChecked,
		"results_set", result.ResultsSet,
		"week_scored", result.WeekScored,
	)
	return result, nil
}

// latestAutomatableWeek walks back from the newest week. Weeks still open for
// picks are skipped: none of their fixtures can have a final result yet.
func latestAutomatableWeek(weeks []week.Week, now time.Time) (week.Week, bool) {
	for i := len(weeks) - 1; i >= 0; i-- {
		if weeks[i].IsLocked(now) && weeks[i].IsAutomatable() {
			return weeks[i], true
		}
	}
	return week.Week{}, false
}
