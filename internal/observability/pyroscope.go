package observability

import (
	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.Pyroscope.Enabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.Pyroscope.AppName,
		ServerAddress:     cfg.Pyroscope.ServerAddress,
		AuthToken:         cfg.Pyroscope.AuthToken,
		BasicAuthUser:     cfg.Pyroscope.BasicAuthUser,
		BasicAuthPassword: cfg.Pyroscope.BasicAuthPassword,
		UploadRate:        cfg.Pyroscope.UploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.Pyroscope.ServerAddress,
		"application", cfg.Pyroscope.AppName,
		"upload_rate", cfg.Pyroscope.UploadRate.String(),
	)

	return profiler.Stop, nil
}
