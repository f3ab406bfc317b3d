package footballdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const (
	defaultBaseURL           = "https://api.football-data.org/v4"
	defaultCallInterval      = 6500 * time.Millisecond
	defaultRateLimitCooldown = 12 * time.Second
	defaultTransientBackoff  = 2 * time.Second
	maxResponseBytes         = 1 << 20
)

var (
	errFootballDataTransient = crerr.New("football-data transient failure")
	errFootballDataThrottled = crerr.New("football-data rate limit hit")
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Timeout    time.Duration
	// CallInterval spaces consecutive requests; 10 req/min needs about 6.5s.
	CallInterval time.Duration
	// RateLimitCooldown is the wait before the single retry after a 429.
	RateLimitCooldown time.Duration
	MaxAttempts       int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
	Observer          CallObserver
}

// CallObserver receives one observation per logical fixture lookup.
type CallObserver interface {
	ObserveFixtureCall(outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveFixtureCall(string, time.Duration) {}

// Client reads single fixtures from football-data.org. All calls share one
// limiter so the free-tier budget is never exceeded.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cooldown   time.Duration
	attempts   int
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	logger     *logging.Logger
	observer   CallObserver
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.CallInterval > 0 {
		limit = rate.Every(cfg.CallInterval)
	}
	cooldown := cfg.RateLimitCooldown
	if cooldown <= 0 {
		cooldown = defaultRateLimitCooldown
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 2
	}
	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		cooldown:   cooldown,
		attempts:   attempts,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:     logger.Named("footballdata"),
		observer:   observer,
		sleep:      resilience.SleepContext,
	}
}

// DefaultCallInterval is the spacing that keeps a 10 req/min key under budget.
func DefaultCallInterval() time.Duration {
	return defaultCallInterval
}

// GetFixture implements usecase.FixtureProvider.
func (c *Client) GetFixture(ctx context.Context, fixtureID int64) (usecase.ExternalFixture, error) {
	if fixtureID <= 0 {
		return usecase.ExternalFixture{}, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	out, err, _ := c.flight.Do(strconv.FormatInt(fixtureID, 10), func() (any, error) {
		return c.fetchFixture(ctx, fixtureID)
	})
	if err != nil {
		return usecase.ExternalFixture{}, err
	}
	fixture, ok := out.(usecase.ExternalFixture)
	if !ok {
		return usecase.ExternalFixture{}, fmt.Errorf("unexpected fixture payload type %T", out)
	}
	return fixture, nil
}

func (c *Client) fetchFixture(ctx context.Context, fixtureID int64) (fixture usecase.ExternalFixture, err error) {
	startedAt := time.Now()
	defer func() {
		c.observer.ObserveFixtureCall(callOutcome(err), time.Since(startedAt))
	}()

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", string(c.breaker.State()))
		return usecase.ExternalFixture{}, fmt.Errorf("%w: fixture api is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	policy := resilience.RetryPolicy{
		MaxAttempts: c.attempts,
		BaseDelay:   defaultTransientBackoff,
		MaxDelay:    c.cooldown,
		Jitter:      0.2,
		Retryable: func(err error) bool {
			return crerr.Is(err, errFootballDataThrottled) || crerr.Is(err, errFootballDataTransient)
		},
		FixedDelay: func(err error) (time.Duration, bool) {
			if crerr.Is(err, errFootballDataThrottled) {
				return c.cooldown, true
			}
			return 0, false
		},
		Sleep: c.sleep,
	}

	var lastErr error
	fixture, err = resilience.Do(ctx, policy, func(ctx context.Context, attempt int) (usecase.ExternalFixture, error) {
		if attempt > 1 {
			c.logger.InfoContext(ctx, "retrying football-data request", "fixture_id", fixtureID, "attempt", attempt)
		}
		out, err := c.requestFixture(ctx, fixtureID)
		lastErr = err
		return out, err
	})

	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		return fixture, nil
	case crerr.Is(lastErr, errFootballDataTransient):
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}

	if crerr.Is(lastErr, errFootballDataThrottled) {
		err = fmt.Errorf("%w: fixture_id=%d: %w", usecase.ErrRateLimited, fixtureID, err)
	}
	if !errors.Is(err, usecase.ErrFixtureNotFound) {
		c.logger.WarnContext(ctx, "football-data request failed", "fixture_id", fixtureID, "error", err)
	}
	return usecase.ExternalFixture{}, err
}

func (c *Client) requestFixture(ctx context.Context, fixtureID int64) (usecase.ExternalFixture, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return usecase.ExternalFixture{}, fmt.Errorf("wait for rate budget: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/matches/"+strconv.FormatInt(fixtureID, 10), nil)
	if err != nil {
		return usecase.ExternalFixture{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return usecase.ExternalFixture{}, ctx.Err()
		}
		return usecase.ExternalFixture{}, crerr.Mark(crerr.Newf("send request: %s", c.sanitize(err.Error())), errFootballDataTransient)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return usecase.ExternalFixture{}, fmt.Errorf("%w: read response body: %v", errFootballDataTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return usecase.ExternalFixture{}, fmt.Errorf("%w: fixture_id=%d", usecase.ErrFixtureNotFound, fixtureID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return usecase.ExternalFixture{}, fmt.Errorf("%w: status=%d reset=%s", errFootballDataThrottled, resp.StatusCode, resp.Header.Get("X-RequestCounter-Reset"))
	case resp.StatusCode >= http.StatusInternalServerError:
		return usecase.ExternalFixture{}, fmt.Errorf("%w: status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(buf.B))
	default:
		return usecase.ExternalFixture{}, crerr.Newf("football-data status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
	}

	return decodeFixture(buf.B, fixtureID)
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, usecase.ErrFixtureNotFound):
		return "not_found"
	case errors.Is(err, usecase.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return "circuit_open"
	default:
		return "error"
	}
}

func (c *Client) sanitize(value string) string {
	if c.token == "" {
		return value
	}
	return strings.ReplaceAll(value, c.token, "REDACTED")
}

func decodeFixture(raw []byte, fixtureID int64) (usecase.ExternalFixture, error) {
	var payload matchEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.ExternalFixture{}, crerr.Wrapf(err, "decode fixture_id=%d", fixtureID)
	}
	item := payload.matchPayload
	if payload.Match != nil {
		item = *payload.Match
	}
	if item.ID == 0 {
		item.ID = fixtureID
	}
	return usecase.ExternalFixture{
		ID:        item.ID,
		Status:    strings.ToUpper(strings.TrimSpace(item.Status)),
		HomeScore: item.Score.FullTime.Home,
		AwayScore: item.Score.FullTime.Away,
	}, nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// matchEnvelope accepts the v4 flat shape and the older {"match": {...}} wrapper.
type matchEnvelope struct {
	matchPayload
	Match *matchPayload `json:"match"`
}

type matchPayload struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Score  struct {
		Winner   string `json:"winner"`
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}
