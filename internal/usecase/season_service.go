package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type SeedMatchInput struct {
	HomeTeam     string    `json:"homeTeam" validate:"required"`
	AwayTeam     string    `json:"awayTeam" validate:"required,nefield=HomeTeam"`
	LockoutAt    time.Time `json:"lockoutAt" validate:"required"`
	FixtureRefID int64     `json:"fixtureRefId" validate:"gte=0"`
}

type SeedWeekInput struct {
	Week    int              `json:"week" validate:"required,gt=0"`
	Matches []SeedMatchInput `json:"matches" validate:"len=5,dive"`
}

type UserResetOutcome struct {
	UserID int64  `json:"userId"`
	Error  string `json:"error,omitempty"`
}

type ResetResult struct {
	ToWeek     int                `json:"toWeek"`
	UsersReset int                `json:"usersReset"`
	Failures   []UserResetOutcome `json:"failures,omitempty"`
}

// SeasonService holds administrative season operations.
type SeasonService struct {
	matchRepo match.Repository
	userRepo  user.Repository
	validate  *validator.Validate
	logger    *logging.Logger
}

func NewSeasonService(matchRepo match.Repository, userRepo user.Repository, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		matchRepo: matchRepo,
		userRepo:  userRepo,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.Named("season"),
	}
}

// SeedWeek creates the five matches of a new week.
func (s *SeasonService) SeedWeek(ctx context.Context, input SeedWeekInput) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.SeedWeek", attribute.Int("week", input.Week))
	defer span.End()

	for i := range input.Matches {
		input.Matches[i].HomeTeam = strings.TrimSpace(input.Matches[i].HomeTeam)
		input.Matches[i].AwayTeam = strings.TrimSpace(input.Matches[i].AwayTeam)
	}
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(input.Matches) != week.MatchesPerWeek {
		return nil, fmt.Errorf("%w: a week needs exactly %d matches", ErrInvalidInput, week.MatchesPerWeek)
	}

	existing, err := s.matchRepo.List(ctx, match.Filter{Week: input.Week})
	if err != nil {
		return nil, storeErr("list matches", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: week %d is already seeded", ErrInvalidInput, input.Week)
	}

	items := make([]match.Match, 0, len(input.Matches))
	for _, item := range input.Matches {
		items = append(items, match.Match{
			Week:         input.Week,
			HomeTeam:     item.HomeTeam,
			AwayTeam:     item.AwayTeam,
			LockoutAt:    item.LockoutAt.UTC(),
			FixtureRefID: item.FixtureRefID,
		})
	}

	created, err := s.matchRepo.Create(ctx, items)
	if err != nil {
		err = storeErr("create matches", err)
		recordSpanError(span, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "week seeded", "week", input.Week, "matches", len(created))
	return created, nil
}

// ResetUsers zeroes every user's totals and rewinds the week cursor.
func (s *SeasonService) ResetUsers(ctx context.Context, inv Invocation, toWeek int) (ResetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ResetUsers", attribute.Int("to_week", toWeek))
	defer span.End()

	if err := requireInvocation(inv); err != nil {
		return ResetResult{}, err
	}
	if toWeek <= 0 {
		return ResetResult{}, fmt.Errorf("%w: to week must be > 0", ErrInvalidInput)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return ResetResult{}, storeErr("list users", err)
	}

	zero := 0
	result := ResetResult{ToWeek: toWeek}
	for _, item := range users {
		_, err := s.userRepo.Update(ctx, item.ID, user.Update{
			Points:           &zero,
			CorrectResults:   &zero,
			IncorrectResults: &zero,
			FullHouses:       &zero,
			Blanks:           &zero,
			CurrentWeek:      &toWeek,
		})
		if err != nil {
			result.Failures = append(result.Failures, UserResetOutcome{UserID: item.ID, Error: storeErr("reset user", err).Error()})
			continue
		}
		result.UsersReset++
	}

	s.logger.WarnContext(ctx, "users reset", "actor", inv.Actor(), "to_week", toWeek, "users_reset", result.UsersReset, "failures", len(result.Failures))
	return result, nil
}
