package observability

import (
	"context"
	"errors"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects action, hook and peer counters for cback runs.
type Metrics struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	hooks          *prometheus.CounterVec
	peerFailures   *prometheus.CounterVec
	runs           *prometheus.CounterVec
	lastRun        *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cback_actions_total",
				Help: "Executed action bindings by action, kind and outcome.",
			},
			[]string{"action", "kind", "outcome"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cback_action_duration_seconds",
				Help:    "Duration of action bindings, hooks included.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"action", "kind"},
		),
		hooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cback_hooks_total",
				Help: "Executed hook commands by action, timing and outcome.",
			},
			[]string{"action", "timing", "outcome"},
		),
		peerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cback_peer_failures_total",
				Help: "Managed actions that failed on a peer.",
			},
			[]string{"action", "peer"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cback_runs_total",
				Help: "Finished runs by final status.",
			},
			[]string{"status"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cback_last_run_timestamp_seconds",
				Help: "Unix time a run last finished, by final status.",
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(m.actions, m.actionDuration, m.hooks, m.peerFailures, m.runs, m.lastRun)
	return m
}

// Registry exposes the underlying registry for export.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle callbacks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnActionFinish: func(_ context.Context, e *domain.ActionEvent) {
			m.actions.WithLabelValues(e.Action, e.Kind.String(), outcome(e.Err)).Inc()
			m.actionDuration.WithLabelValues(e.Action, e.Kind.String()).Observe(e.Duration.Seconds())
		},
		OnHook: func(_ context.Context, e *domain.HookEvent) {
			result := "success"
			if e.ExitCode != 0 {
				result = "failure"
			}
			m.hooks.WithLabelValues(e.Action, e.Timing.String(), result).Inc()
		},
		OnPeerFailure: func(_ context.Context, e *domain.ActionEvent) {
			m.peerFailures.WithLabelValues(e.Action, e.Peer).Inc()
		},
	}
}

// ObserveRun records the end of a run.
func (m *Metrics) ObserveRun(report *domain.RunReport) {
	if report == nil {
		return
	}
	status := string(report.Status)
	m.runs.WithLabelValues(status).Inc()
	m.lastRun.WithLabelValues(status).Set(float64(report.Finished.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInterrupted):
		return "interrupted"
	default:
		return "failure"
	}
}
