package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// ScoreOptions selects how the idempotency guard is treated.
type ScoreOptions struct {
	// Force re-applies deltas to every user even when the week was scored.
	Force bool
	// Resume bypasses the guard but skips users already advanced past the week.
	Resume bool
}

type ScoringStatus string

const (
	ScoringStatusScored           ScoringStatus = "scored"
	ScoringStatusPartial          ScoringStatus = "partial"
	ScoringStatusNoPredictions    ScoringStatus = "no_predictions"
	ScoringStatusAlreadyScored    ScoringStatus = "already_scored"
	ScoringStatusNotFullyResolved ScoringStatus = "not_fully_resolved"
)

type UserOutcomeStatus string

const (
	UserOutcomeApplied UserOutcomeStatus = "applied"
	UserOutcomeSkipped UserOutcomeStatus = "skipped"
	UserOutcomeError   UserOutcomeStatus = "error"
)

// UserScoreOutcome is one user's result inside a scoring run.
type UserScoreOutcome struct {
	UserID        int64             `json:"userId"`
	Name          string            `json:"name"`
	Status        UserOutcomeStatus `json:"status"`
	Predictions   int               `json:"predictions"`
	WeeklyCorrect int               `json:"weeklyCorrect"`
	PointsAdded   int               `json:"pointsAdded"`
	FullHouse     bool              `json:"fullHouse"`
	Blank         bool              `json:"blank"`
	Error         string            `json:"error,omitempty"`
}

// PredictionFailure records a prediction whose points could not be written.
type PredictionFailure struct {
	PredictionID int64  `json:"predictionId"`
	UserID       int64  `json:"userId"`
	Error        string `json:"error"`
}

type ScoringResult struct {
	RunID              string              `json:"runId"`
	Week               int                 `json:"week"`
	Status             ScoringStatus       `json:"status"`
	Forced             bool                `json:"forced"`
	Resumed            bool                `json:"resumed"`
	PredictionsUpdated int                 `json:"predictionsUpdated"`
	UsersUpdated       int                 `json:"usersUpdated"`
	FullHouseNames     []string            `json:"fullHouseNames"`
	BlanksNames        []string            `json:"blanksNames"`
	PerUserDetail      []UserScoreOutcome  `json:"perUserDetail"`
	PredictionFailures []PredictionFailure `json:"predictionFailures,omitempty"`
}

// HasFailures reports whether any per-item write failed.
func (r ScoringResult) HasFailures() bool {
	if len(r.PredictionFailures) > 0 {
		return true
	}
	for _, item := range r.PerUserDetail {
		if item.Status == UserOutcomeError {
			return true
		}
	}
	return false
}

type ScoringService struct {
	loader         snapshotLoader
	predictionRepo prediction.Repository
	userRepo       user.Repository
	rules          scoring.Rules
	notifier       ScoringNotifier
	metrics        Metrics
	logger         *logging.Logger
	now            func() time.Time
}

func NewScoringService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	userRepo user.Repository,
	notifier ScoringNotifier,
	metrics Metrics,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		loader:         snapshotLoader{matchRepo: matchRepo, predictionRepo: predictionRepo, userRepo: userRepo},
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		rules:          scoring.DefaultRules(),
		notifier:       notifier,
		metrics:        metricsOrNoop(metrics),
		logger:         logger.Named("scoring"),
		now:            time.Now,
	}
}

// ScoreWeek distributes points for a resolved week. Per-item write failures are
// reported in the result and never abort the run. A non-forced call on a week
// that was already scored returns week.ErrAlreadyScored with zero users updated.
func (s *ScoringService) ScoreWeek(ctx context.Context, number int, opts ScoreOptions) (ScoringResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreWeek",
		attribute.Int("week", number),
		attribute.Bool("force", opts.Force),
		attribute.Bool("resume", opts.Resume),
	)
	defer span.End()

	if number <= 0 {
		return ScoringResult{}, fmt.Errorf("%w: week must be > 0", ErrInvalidInput)
	}

	result := ScoringResult{
		RunID:          uuid.NewString(),
		Week:           number,
		Forced:         opts.Force,
		Resumed:        opts.Resume,
		FullHouseNames: []string{},
		BlanksNames:    []string{},
		PerUserDetail:  []UserScoreOutcome{},
	}
	logger := s.logger.With("run_id", result.RunID, "week", number)

	snap, err := s.loader.load(ctx, number, true)
	if err != nil {
		recordSpanError(span, err)
		return result, err
	}

	if !snap.week.IsFullyResolved() {
		result.Status = ScoringStatusNotFullyResolved
		err := fmt.Errorf("%w: week=%d unresolved=%d", week.ErrNotFullyResolved, number, len(snap.week.Unresolved()))
		s.metrics.ObserveScoringRun(result.Status, 0, 0)
		return result, err
	}
	if snap.week.IsScored(snap.users) && !opts.Force && !opts.Resume {
		result.Status = ScoringStatusAlreadyScored
		s.metrics.ObserveScoringRun(result.Status, 0, 0)
		return result, fmt.Errorf("%w: week=%d", week.ErrAlreadyScored, number)
	}

	predictions := predictionsInWeek(snap.predictions, snap.week)
	if len(predictions) == 0 {
		result.Status = ScoringStatusNoPredictions
		logger.InfoContext(ctx, "no predictions for week")
		s.metrics.ObserveScoringRun(result.Status, 0, 0)
		return result, nil
	}

	results := snap.week.Results()
	s.writePredictionPoints(ctx, predictions, results, &result)
	s.applyUsers(ctx, number, opts, scoring.TallyWeek(predictions, results), snap.users, &result)

	result.Status = ScoringStatusScored
	if result.HasFailures() {
		result.Status = ScoringStatusPartial
	}
	failures := len(result.PredictionFailures)
	for _, item := range result.PerUserDetail {
		if item.Status == UserOutcomeError {
			failures++
		}
	}
	s.metrics.ObserveScoringRun(result.Status, result.UsersUpdated, failures)
	span.SetAttributes(
		attribute.Int("predictions_updated", result.PredictionsUpdated),
		attribute.Int("users_updated", result.UsersUpdated),
		attribute.Int("failures", failures),
	)
	logger.InfoContext(ctx, "week scored",
		"status", string(result.Status),
		"predictions_updated", result.PredictionsUpdated,
		"users_updated", result.UsersUpdated,
		"failures", failures,
		"full_houses", len(result.FullHouseNames),
		"blanks", len(result.BlanksNames),
	)

	s.notify(ctx, result)
	return result, nil
}

// writePredictionPoints stores 0/1 per prediction, skipping unchanged values.
func (s *ScoringService) writePredictionPoints(ctx context.Context, predictions []prediction.Prediction, results map[int64]match.Result, result *ScoringResult) {
	for _, item := range predictions {
		points := item.Points(results[item.MatchID])
		if !item.NeedsPointsWrite(points) {
			continue
		}
		if _, err := s.predictionRepo.UpdatePoints(ctx, item.ID, points); err != nil {
			err = storeErr("update prediction points", err)
			result.PredictionFailures = append(result.PredictionFailures, PredictionFailure{
				PredictionID: item.ID,
				UserID:       item.UserID,
				Error:        err.Error(),
			})
			s.logger.WarnContext(ctx, "prediction points write failed", "prediction_id", item.ID, "error", err)
			continue
		}
		result.PredictionsUpdated++
	}
}

func (s *ScoringService) applyUsers(ctx context.Context, number int, opts ScoreOptions, tallies map[int64]scoring.Tally, users []user.User, result *ScoringResult) {
	usersByID := make(map[int64]user.User, len(users))
	for _, item := range users {
		usersByID[item.ID] = item
	}

	userIDs := make([]int64, 0, len(tallies))
	for id := range tallies {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	for _, id := range userIDs {
		tally := tallies[id]
		outcome := UserScoreOutcome{
			UserID:        id,
			Predictions:   tally.Predictions,
			WeeklyCorrect: tally.WeeklyCorrect,
			FullHouse:     s.rules.IsFullHouse(tally),
			Blank:         s.rules.IsBlank(tally),
		}

		current, ok := usersByID[id]
		switch {
		case !ok:
			outcome.Status = UserOutcomeError
			outcome.Error = fmt.Sprintf("%v: user id=%d", ErrNotFound, id)
		case opts.Resume && !opts.Force && current.HasPassedWeek(number):
			outcome.Name = current.Name
			outcome.Status = UserOutcomeSkipped
		default:
			outcome.Name = current.Name
			if err := s.applyUser(ctx, current, tally, number); err != nil {
				outcome.Status = UserOutcomeError
				outcome.Error = err.Error()
				s.logger.WarnContext(ctx, "user score write failed", "user_id", id, "week", number, "error", err)
				break
			}
			outcome.Status = UserOutcomeApplied
			outcome.PointsAdded = s.rules.PointsToAdd(tally)
			result.UsersUpdated++
			if outcome.FullHouse {
				result.FullHouseNames = append(result.FullHouseNames, current.Name)
			}
			if outcome.Blank {
				result.BlanksNames = append(result.BlanksNames, current.Name)
			}
		}
		result.PerUserDetail = append(result.PerUserDetail, outcome)
	}
}

// applyUser writes the cumulative totals first and advances the cursor only
// after they are stored.
func (s *ScoringService) applyUser(ctx context.Context, current user.User, tally scoring.Tally, number int) error {
	points := current.Points + s.rules.PointsToAdd(tally)
	correct := current.CorrectResults + tally.WeeklyCorrect
	incorrect := current.IncorrectResults + tally.Incorrect()
	fullHouses := current.FullHouses
	if s.rules.IsFullHouse(tally) {
		fullHouses++
	}
	blanks := current.Blanks
	if s.rules.IsBlank(tally) {
		blanks++
	}

	if _, err := s.userRepo.Update(ctx, current.ID, user.Update{
		Points:           &points,
		CorrectResults:   &correct,
		IncorrectResults: &incorrect,
		FullHouses:       &fullHouses,
		Blanks:           &blanks,
	}); err != nil {
		return storeErr("update user totals", err)
	}

	next := max(current.CurrentWeek, number+1)
	if next == current.CurrentWeek {
		return nil
	}
	if _, err := s.userRepo.Update(ctx, current.ID, user.Update{CurrentWeek: &next}); err != nil {
		return storeErr("advance user week", err)
	}
	return nil
}

func (s *ScoringService) notify(ctx context.Context, result ScoringResult) {
	if s.notifier == nil || result.UsersUpdated == 0 {
		return
	}
	event := WeekScoredEvent{
		RunID:          result.RunID,
		Week:           result.Week,
		Forced:         result.Forced,
		UsersUpdated:   result.UsersUpdated,
		FullHouseNames: result.FullHouseNames,
		BlanksNames:    result.BlanksNames,
		ScoredAt:       s.now().UTC(),
	}
	if err := s.notifier.PublishWeekScored(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish week scored failed", "week", result.Week, "error", err)
	}
}

func predictionsInWeek(items []prediction.Prediction, w week.Week) []prediction.Prediction {
	matchIDs := make(map[int64]struct{}, len(w.Matches))
	for _, item := range w.Matches {
		matchIDs[item.ID] = struct{}{}
	}
	out := make([]prediction.Prediction, 0, len(items))
	for _, item := range items {
		if _, ok := matchIDs[item.MatchID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// IsAlreadyScored reports whether err is the idempotency guard tripping.
func IsAlreadyScored(err error) bool {
	return errors.Is(err, week.ErrAlreadyScored)
}
