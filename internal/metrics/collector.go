// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records planning and execution metrics.
type Collector struct {
	plansComputed   *prometheus.CounterVec
	planLatency     *prometheus.HistogramVec
	planLength      *prometheus.HistogramVec
	actionsExecuted *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	processOutcomes *prometheus.CounterVec
	blackboardSize  *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector registers the collectors on reg. A nil reg uses the default
// registry; tests pass a fresh one to avoid duplicate registration.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.plansComputed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_computed_total",
			Help:      "Total number of planning passes, by outcome",
		},
		[]string{"process_id", "outcome"}, // outcome: found, none, satisfied
	)

	c.planLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_latency_seconds",
			Help:      "Time spent in a single planning pass",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"process_id"},
	)

	c.planLength = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_length_actions",
			Help:      "Number of actions in computed plans",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"process_id"},
	)

	c.actionsExecuted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_executed_total",
			Help:      "Total number of executed actions, by status",
		},
		[]string{"process_id", "action", "status"},
	)

	c.actionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action body execution duration",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60},
		},
		[]string{"process_id", "action"},
	)

	c.processOutcomes = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_outcomes_total",
			Help:      "Terminal statuses of completed process runs",
		},
		[]string{"status"},
	)

	c.blackboardSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blackboard_entries",
			Help:      "Number of entries on a process blackboard",
		},
		[]string{"process_id"},
	)

	logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordPlan records one planning pass.
func (c *Collector) RecordPlan(processID, outcome string, length int, latency time.Duration) {
	c.plansComputed.WithLabelValues(processID, outcome).Inc()
	c.planLatency.WithLabelValues(processID).Observe(latency.Seconds())
	if outcome == "found" {
		c.planLength.WithLabelValues(processID).Observe(float64(length))
	}
}

// RecordAction records one executed action.
func (c *Collector) RecordAction(processID, action, status string, duration time.Duration) {
	c.actionsExecuted.WithLabelValues(processID, action, status).Inc()
	c.actionDuration.WithLabelValues(processID, action).Observe(duration.Seconds())
}

// RecordOutcome records the terminal status of a process run.
func (c *Collector) RecordOutcome(status string) {
	c.processOutcomes.WithLabelValues(status).Inc()
}

// RecordBlackboardSize records the current arena size of a process.
func (c *Collector) RecordBlackboardSize(processID string, size int) {
	c.blackboardSize.WithLabelValues(processID).Set(float64(size))
}
