package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/prediction-league/external/footballdata"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/notify"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/observability"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// Container holds the wired services shared by the api, worker and admin binaries.
type Container struct {
	Config  config.Config
	Logger  *logging.Logger
	Metrics *observability.Metrics
	PubSub  *gochannel.GoChannel

	Weeks       *usecase.WeekService
	Leaderboard *usecase.LeaderboardService
	Predictions *usecase.PredictionService
	Results     *usecase.ResultService
	Scoring     *usecase.ScoringService
	AutoScore   *usecase.AutoScoreService
	Season      *usecase.SeasonService
	AdminAuth   *usecase.AdminAuthenticator

	db *sqlx.DB
}

type repositories struct {
	matches     match.Repository
	predictions prediction.Repository
	users       user.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Metrics:   observability.NewMetrics(),
		AdminAuth: usecase.NewAdminAuthenticator(cfg.AdminAPIKey),
	}

	repos, err := c.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	c.PubSub = notify.NewGoChannel(logger)
	publisher := notify.NewPublisher(c.PubSub, logger)

	c.Results = usecase.NewResultService(repos.matches, c.fixtureProvider(), c.Metrics, logger)
	c.Scoring = usecase.NewScoringService(repos.matches, repos.predictions, repos.users, publisher, c.Metrics, logger)
	c.AutoScore = usecase.NewAutoScoreService(repos.matches, c.Results, c.Scoring, c.Metrics, logger)
	c.Weeks = usecase.NewWeekService(repos.matches, repos.users)
	c.Leaderboard = usecase.NewLeaderboardService(repos.users)
	c.Predictions = usecase.NewPredictionService(repos.matches, repos.predictions, repos.users)
	c.Season = usecase.NewSeasonService(repos.matches, repos.users, logger)

	return c, nil
}

func (c *Container) openRepositories(ctx context.Context) (repositories, error) {
	if c.Config.StoreDriver != config.StorePostgres {
		now := time.Now().UTC()
		c.Logger.InfoContext(ctx, "using in-memory store with seed data")
		return repositories{
			matches:     memory.NewMatchRepository(memory.SeedMatches(now)),
			predictions: memory.NewPredictionRepository(nil),
			users:       memory.NewUserRepository(memory.SeedUsers()),
		}, nil
	}

	dbURL := NormalizeDBURL(c.Config.DBURL, c.Config.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("ping postgres: %w", err)
	}
	c.db = db
	c.Logger.InfoContext(ctx, "postgres connected", "db_url", redactDBURL(dbURL))

	if c.Config.DBSeedOnStart {
		if err := postgres.BootstrapSeed(ctx, db, time.Now().UTC()); err != nil {
			return repositories{}, fmt.Errorf("seed postgres: %w", err)
		}
		c.Logger.InfoContext(ctx, "postgres seed applied")
	}

	return repositories{
		matches:     postgres.NewMatchRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		users:       postgres.NewUserRepository(db),
	}, nil
}

// fixtureProvider returns nil when the fixture API is disabled so result
// acquisition reports every lookup as an api error instead of calling out.
func (c *Container) fixtureProvider() usecase.FixtureProvider {
	cfg := c.Config.FixtureAPI
	if !cfg.Enabled {
		return nil
	}

	return footballdata.NewClient(footballdata.ClientConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		BaseURL:           cfg.BaseURL,
		Token:             cfg.Token,
		Timeout:           cfg.Timeout,
		CallInterval:      cfg.CallInterval,
		RateLimitCooldown: cfg.RateLimitCooldown,
		MaxAttempts:       cfg.MaxAttempts,
		Logger:            c.Logger,
		CircuitBreaker:    cfg.CircuitBreaker(),
		Observer:          c.Metrics,
	})
}

func (c *Container) Close() error {
	var firstErr error
	if c.PubSub != nil {
		if err := c.PubSub.Close(); err != nil {
			firstErr = fmt.Errorf("close pubsub: %w", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close postgres: %w", err)
		}
	}
	return firstErr
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	handler := httpapi.NewHandler(
		c.Weeks,
		c.Leaderboard,
		c.Predictions,
		c.Results,
		c.Scoring,
		c.AutoScore,
		c.Season,
		c.Logger,
	)

	routerCfg := httpapi.RouterConfig{
		AdminAuth:          c.AdminAuth,
		InternalJobToken:   c.Config.InternalJobToken,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
		SwaggerEnabled:     c.Config.SwaggerEnabled,
	}
	if c.Config.MetricsEnabled {
		routerCfg.MetricsHandler = c.Metrics.Handler()
	}

	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, routerCfg, c.Logger),
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// NewLogger builds the process logger from config and installs it as default.
func NewLogger(cfg config.Config, component string) *logging.Logger {
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
		Service: cfg.ServiceName,
		Env:     cfg.AppEnv,
	}).Named(component)
	logging.SetDefault(logger)
	return logger
}
