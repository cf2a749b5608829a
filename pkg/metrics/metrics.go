// Package metrics exposes Prometheus counters for status changes, rule firing and action dispatch.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadflow"

type Metrics struct {
	registry *prometheus.Registry

	statusChanges       *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	rulesFired          *prometheus.CounterVec
	actionsResolved     *prometheus.CounterVec
	actionsDispatched   *prometheus.CounterVec
	sweepDuration       prometheus.Histogram
	sweptEntities       prometheus.Counter
	lintIssues          prometheus.Gauge
}

// New registers the leadflow collectors, plus Go runtime and process
// collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Accepted status changes by entity type and target status.",
		}, []string{"entity_type", "to_status"}),
		transitionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_rejected_total",
			Help:      "Status changes rejected because the transition is not allowed.",
		}, []string{"entity_type"}),
		rulesFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_fired_total",
			Help:      "Automation rules whose trigger matched and conditions passed.",
		}, []string{"trigger"}),
		actionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_resolved_total",
			Help:      "Actions produced by fired rules.",
		}, []string{"action_type"}),
		actionsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_dispatched_total",
			Help:      "Actions handed to executors by result.",
		}, []string{"action_type", "result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of time-based rule sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweptEntities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swept_entities_total",
			Help:      "Entities evaluated by time-based sweeps.",
		}),
		lintIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lint_issues",
			Help:      "Reference issues found in the status registry at the last save.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.statusChanges,
		m.transitionsRejected,
		m.rulesFired,
		m.actionsResolved,
		m.actionsDispatched,
		m.sweepDuration,
		m.sweptEntities,
		m.lintIssues,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// All recording methods are nil-safe so components can run without metrics.

func (m *Metrics) StatusChanged(entityType, toStatus string) {
	if m == nil {
		return
	}

	m.statusChanges.WithLabelValues(entityType, toStatus).Inc()
}

func (m *Metrics) TransitionRejected(entityType string) {
	if m == nil {
		return
	}

	m.transitionsRejected.WithLabelValues(entityType).Inc()
}

func (m *Metrics) RulesFired(trigger string, rules int) {
	if m == nil || rules == 0 {
		return
	}

	m.rulesFired.WithLabelValues(trigger).Add(float64(rules))
}

func (m *Metrics) ActionResolved(actionType string) {
	if m == nil {
		return
	}

	m.actionsResolved.WithLabelValues(actionType).Inc()
}

func (m *Metrics) ActionDispatched(actionType, result string) {
	if m == nil {
		return
	}

	m.actionsDispatched.WithLabelValues(actionType, result).Inc()
}

func (m *Metrics) SweepFinished(elapsed time.Duration, entities int) {
	if m == nil {
		return
	}

	m.sweepDuration.Observe(elapsed.Seconds())
	m.sweptEntities.Add(float64(entities))
}

func (m *Metrics) LintIssues(count int) {
	if m == nil {
		return
	}

	m.lintIssues.Set(float64(count))
}
