package usecase

import "time"

// Metrics receives engine observations. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveResolution(status ResolutionStatus)
	ObserveScoringRun(status ScoringStatus, usersUpdated, failures int)
	ObserveTick(trigger InvocationKind, duration time.Duration, weekScored bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveResolution(ResolutionStatus)              {}
func (noopMetrics) ObserveScoringRun(ScoringStatus, int, int)       {}
func (noopMetrics) ObserveTick(InvocationKind, time.Duration, bool) {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
