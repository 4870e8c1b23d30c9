package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/dispatch"
)

const (
	metricsNamespace = "ocp_addons_operators"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics records product outcomes on a private registry. It implements
// dispatch.Observer.
type Metrics struct {
	registry *prometheus.Registry

	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	runSuccess     prometheus.Gauge
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "dispatch",
				Name:      "actions_total",
				Help:      "Total number of product actions by kind, action and result",
			},
			[]string{"kind", "action", "result"},
		),

		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "dispatch",
				Name:      "action_duration_seconds",
				Help:      "Duration of product actions in seconds",
				Buckets:   prometheus.ExponentialBuckets(5, 2, 11), // 5s to ~85min
			},
			[]string{"kind", "action"},
		),

		runSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "run_success",
				Help:      "1 if every product of the last run succeeded, 0 otherwise",
			},
		),
	}

	m.registry.MustRegister(m.actionsTotal, m.actionDuration, m.runSuccess)
	return m
}

// Observe records a single outcome.
func (m *Metrics) Observe(o dispatch.Outcome) {
	result := resultSuccess
	if !o.Success {
		result = resultFailure
	}
	m.actionsTotal.WithLabelValues(string(o.Kind), string(o.Action), result).Inc()
	m.actionDuration.WithLabelValues(string(o.Kind), string(o.Action)).Observe(o.Duration().Seconds())
}

// SetResult records the verdict of the run.
func (m *Metrics) SetResult(res Result) {
	if res.Success {
		m.runSuccess.Set(1)
		return
	}
	m.runSuccess.Set(0)
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
