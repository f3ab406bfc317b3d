package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the api, worker and admin binaries.
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"dev"`
	ServiceName    string        `env:"APP_SERVICE_NAME" envDefault:"prediction-league"`
	ServiceVersion string        `env:"APP_SERVICE_VERSION" envDefault:"dev"`
	HTTPAddr       string        `env:"APP_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout    time.Duration `env:"APP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"APP_WRITE_TIMEOUT" envDefault:"30s"`
	LogLevel       logging.Level `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogConsole     bool          `env:"APP_LOG_CONSOLE" envDefault:"false"`

	StoreDriver             string `env:"STORE_DRIVER" envDefault:"memory"`
	DBURL                   string `env:"DB_URL"`
	DBDisablePreparedBinary bool   `env:"DB_DISABLE_PREPARED_BINARY_RESULT" envDefault:"false"`
	DBSeedOnStart           bool   `env:"DB_SEED_ON_START" envDefault:"false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AdminAPIKey        string   `env:"ADMIN_API_KEY"`
	InternalJobToken   string   `env:"INTERNAL_JOB_TOKEN"`

	FixtureAPI        FixtureAPIConfig `envPrefix:"FIXTURE_API_"`
	AutoScoreInterval time.Duration    `env:"AUTOSCORE_INTERVAL" envDefault:"15m"`

	Uptrace        UptraceConfig   `envPrefix:"UPTRACE_"`
	Pyroscope      PyroscopeConfig `envPrefix:"PYROSCOPE_"`
	MetricsEnabled bool            `env:"METRICS_ENABLED" envDefault:"true"`
	PprofEnabled   bool            `env:"PPROF_ENABLED" envDefault:"false"`
	// SwaggerEnabled defaults to on outside prod; see Load.
	SwaggerEnabled bool   `env:"-"`
	PprofAddr      string `env:"PPROF_ADDR" envDefault:":6060"`
}

// FixtureAPIConfig configures the football-data.org client.
type FixtureAPIConfig struct {
	Enabled               bool          `env:"ENABLED" envDefault:"false"`
	BaseURL               string        `env:"BASE_URL" envDefault:"https://api.football-data.org/v4"`
	Token                 string        `env:"TOKEN"`
	Timeout               time.Duration `env:"TIMEOUT" envDefault:"15s"`
	CallInterval          time.Duration `env:"CALL_INTERVAL" envDefault:"6500ms"`
	RateLimitCooldown     time.Duration `env:"RATE_LIMIT_COOLDOWN" envDefault:"12s"`
	MaxAttempts           int           `env:"MAX_ATTEMPTS" envDefault:"2"`
	CircuitEnabled        bool          `env:"CIRCUIT_ENABLED" envDefault:"true"`
	CircuitFailureCount   int           `env:"CIRCUIT_FAILURE_COUNT" envDefault:"3"`
	CircuitOpenTimeout    time.Duration `env:"CIRCUIT_OPEN_TIMEOUT" envDefault:"60s"`
	CircuitHalfOpenMaxReq int           `env:"CIRCUIT_HALF_OPEN_MAX_REQ" envDefault:"1"`
}

func (c FixtureAPIConfig) CircuitBreaker() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.CircuitEnabled,
		FailureThreshold: c.CircuitFailureCount,
		OpenTimeout:      c.CircuitOpenTimeout,
		HalfOpenMaxReq:   c.CircuitHalfOpenMaxReq,
	}
}

type UptraceConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	DSN         string `env:"DSN"`
	LogsEnabled bool   `env:"LOGS_ENABLED" envDefault:"true"`
}

type PyroscopeConfig struct {
	Enabled           bool          `env:"ENABLED" envDefault:"false"`
	ServerAddress     string        `env:"SERVER_ADDRESS"`
	AppName           string        `env:"APP_NAME" envDefault:"prediction-league"`
	AuthToken         string        `env:"AUTH_TOKEN"`
	BasicAuthUser     string        `env:"BASIC_AUTH_USER"`
	BasicAuthPassword string        `env:"BASIC_AUTH_PASSWORD"`
	UploadRate        time.Duration `env:"UPLOAD_RATE" envDefault:"15s"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.AppEnv, err = parseAppEnv(cfg.AppEnv)
	if err != nil {
		return Config{}, err
	}
	cfg.StoreDriver, err = parseStoreDriver(cfg.StoreDriver)
	if err != nil {
		return Config{}, err
	}

	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	cfg.AdminAPIKey = strings.TrimSpace(cfg.AdminAPIKey)
	cfg.InternalJobToken = strings.TrimSpace(cfg.InternalJobToken)
	cfg.FixtureAPI.Token = strings.TrimSpace(cfg.FixtureAPI.Token)
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if strings.TrimSpace(cfg.Uptrace.DSN) == "" {
		cfg.Uptrace.DSN = parseUptraceDSNFromOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	}

	cfg.SwaggerEnabled = cfg.AppEnv != EnvProd
	if raw := strings.TrimSpace(os.Getenv("SWAGGER_ENABLED")); raw != "" {
		cfg.SwaggerEnabled, err = strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("APP_HTTP_ADDR cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("APP_READ_TIMEOUT must be > 0")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("APP_WRITE_TIMEOUT must be > 0")
	}
	if c.StoreDriver == StorePostgres && c.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
	}
	if c.AppEnv == EnvProd && c.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required when APP_ENV=%s", EnvProd)
	}
	if c.AutoScoreInterval <= 0 {
		return fmt.Errorf("AUTOSCORE_INTERVAL must be > 0")
	}

	if c.FixtureAPI.Enabled {
		if c.FixtureAPI.Token == "" {
			return fmt.Errorf("FIXTURE_API_TOKEN is required when FIXTURE_API_ENABLED=true")
		}
		if strings.TrimSpace(c.FixtureAPI.BaseURL) == "" {
			return fmt.Errorf("FIXTURE_API_BASE_URL cannot be empty")
		}
	}
	if c.FixtureAPI.Timeout <= 0 {
		return fmt.Errorf("FIXTURE_API_TIMEOUT must be > 0")
	}
	if c.FixtureAPI.CallInterval < 0 {
		return fmt.Errorf("FIXTURE_API_CALL_INTERVAL must be >= 0")
	}
	if c.FixtureAPI.RateLimitCooldown <= 0 {
		return fmt.Errorf("FIXTURE_API_RATE_LIMIT_COOLDOWN must be > 0")
	}
	if c.FixtureAPI.MaxAttempts < 1 {
		return fmt.Errorf("FIXTURE_API_MAX_ATTEMPTS must be >= 1")
	}
	if c.FixtureAPI.CircuitFailureCount < 1 {
		return fmt.Errorf("FIXTURE_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if c.FixtureAPI.CircuitOpenTimeout <= 0 {
		return fmt.Errorf("FIXTURE_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if c.FixtureAPI.CircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("FIXTURE_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if c.Uptrace.Enabled && strings.TrimSpace(c.Uptrace.DSN) == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.Pyroscope.Enabled && strings.TrimSpace(c.Pyroscope.ServerAddress) == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if c.Pyroscope.UploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	if c.PprofEnabled && strings.TrimSpace(c.PprofAddr) == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	return nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseStoreDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StoreMemory, StorePostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", v, StoreMemory, StorePostgres)
	}
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}
	return ""
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
