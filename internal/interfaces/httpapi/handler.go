package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/relation"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	weekService        *usecase.WeekService
	leaderboardService *usecase.LeaderboardService
	predictionService  *usecase.PredictionService
	resultService      *usecase.ResultService
	scoringService     *usecase.ScoringService
	autoScoreService   *usecase.AutoScoreService
	seasonService      *usecase.SeasonService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	weekService *usecase.WeekService,
	leaderboardService *usecase.LeaderboardService,
	predictionService *usecase.PredictionService,
	resultService *usecase.ResultService,
	scoringService *usecase.ScoringService,
	autoScoreService *usecase.AutoScoreService,
	seasonService *usecase.SeasonService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		weekService:        weekService,
		leaderboardService: leaderboardService,
		predictionService:  predictionService,
		resultService:      resultService,
		scoringService:     scoringService,
		autoScoreService:   autoScoreService,
		seasonService:      seasonService,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// decodeJSON reads a bounded body into dst. An empty body is accepted only
// when allowEmpty is set, leaving dst at its zero value.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := strictJSON.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return value, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := relation.Parse([]byte(strings.TrimSpace(r.PathValue(name))))
	if err != nil || !id.Valid() {
		return 0, fmt.Errorf("%w: %s must be a positive id", usecase.ErrInvalidInput, name)
	}
	return id.Int64(), nil
}

// userIDFromRequest reads the caller id header. Session auth lives in front of
// this service; the header is trusted as-is.
func userIDFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s header", usecase.ErrUnauthorized, headerUserID)
	}
	id, err := relation.Parse([]byte(raw))
	if err != nil || !id.Valid() {
		return 0, fmt.Errorf("%w: invalid %s header", usecase.ErrInvalidInput, headerUserID)
	}
	return id.Int64(), nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
