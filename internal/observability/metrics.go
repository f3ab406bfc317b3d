package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const metricsNamespace = "prediction_league"

// Metrics is the Prometheus implementation of usecase.Metrics. It also
// records football-data calls for the fixture client.
type Metrics struct {
	registry      *prometheus.Registry
	resolutions   *prometheus.CounterVec
	scoringRuns   *prometheus.CounterVec
	usersScored   prometheus.Counter
	userFailures  prometheus.Counter
	ticks         *prometheus.HistogramVec
	weeksScored   prometheus.Counter
	fixtureCalls  *prometheus.CounterVec
	fixtureTiming prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "match_resolutions_total",
			Help:      "Match resolution attempts by outcome.",
		}, []string{"status"}),
		scoringRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_runs_total",
			Help:      "Week scoring runs by final status.",
		}, []string{"status"}),
		usersScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_users_updated_total",
			Help:      "Users whose totals were updated by scoring runs.",
		}),
		userFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scoring_failures_total",
			Help:      "Per-user or per-prediction write failures during scoring.",
		}),
		ticks: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "autoscore_tick_duration_seconds",
			Help:      "Auto-score tick duration by trigger.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"trigger"}),
		weeksScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "autoscore_weeks_scored_total",
			Help:      "Ticks that ended with a scored week.",
		}),
		fixtureCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fixture_api_requests_total",
			Help:      "football-data requests by outcome.",
		}, []string{"outcome"}),
		fixtureTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fixture_api_request_duration_seconds",
			Help:      "football-data request latency including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resolutions,
		m.scoringRuns,
		m.usersScored,
		m.userFailures,
		m.ticks,
		m.weeksScored,
		m.fixtureCalls,
		m.fixtureTiming,
	)
	return m
}

func (m *Metrics) ObserveResolution(status usecase.ResolutionStatus) {
	m.resolutions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveScoringRun(status usecase.ScoringStatus, usersUpdated, failures int) {
	m.scoringRuns.WithLabelValues(string(status)).Inc()
	if usersUpdated > 0 {
		m.usersScored.Add(float64(usersUpdated))
	}
	if failures > 0 {
		m.userFailures.Add(float64(failures))
	}
}

func (m *Metrics) ObserveTick(trigger usecase.InvocationKind, duration time.Duration, weekScored bool) {
	m.ticks.WithLabelValues(string(trigger)).Observe(duration.Seconds())
	if weekScored {
		m.weeksScored.Inc()
	}
}

// ObserveFixtureCall records one logical fixture lookup.
func (m *Metrics) ObserveFixtureCall(outcome string, elapsed time.Duration) {
	m.fixtureCalls.WithLabelValues(outcome).Inc()
	m.fixtureTiming.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
