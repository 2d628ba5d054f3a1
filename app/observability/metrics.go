package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records service operation outcomes.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

// BallchasingMetrics records replay reconciliation activity.
type BallchasingMetrics interface {
	RecordReplaysScanned(ctx context.Context, n int)
	RecordReconciliation(ctx context.Context, outcome string)
	RecordUpload(ctx context.Context, outcome string)
}

// DMMetrics records direct message delivery.
type DMMetrics interface {
	RecordDirectMessage(ctx context.Context, outcome string)
	RecordQueueDepth(ctx context.Context, priority, normal int)
}

type PrometheusOperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewOperationMetrics(reg prometheus.Registerer) *PrometheusOperationMetrics {
	labels := []string{"service", "operation"}
	m := &PrometheusOperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_success_total",
			Help: "Service operations finished without error.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failures_total",
			Help: "Service operations that returned an error or panicked.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
	reg.MustRegister(m.attempts, m.successes, m.failures, m.duration)
	return m
}

func (m *PrometheusOperationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusOperationMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

type PrometheusBallchasingMetrics struct {
	scanned         prometheus.Counter
	reconciliations *prometheus.CounterVec
	uploads         *prometheus.CounterVec
}

func NewBallchasingMetrics(reg prometheus.Registerer) *PrometheusBallchasingMetrics {
	m := &PrometheusBallchasingMetrics{
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ballchasing", Name: "replays_scanned_total",
			Help: "Candidate replays examined during match reconciliation.",
		}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ballchasing", Name: "reconciliations_total",
			Help: "Match reconciliations by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ballchasing", Name: "uploads_total",
			Help: "Replay uploads by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.scanned, m.reconciliations, m.uploads)
	return m
}

func (m *PrometheusBallchasingMetrics) RecordReplaysScanned(_ context.Context, n int) {
	m.scanned.Add(float64(n))
}

func (m *PrometheusBallchasingMetrics) RecordReconciliation(_ context.Context, outcome string) {
	m.reconciliations.WithLabelValues(outcome).Inc()
}

func (m *PrometheusBallchasingMetrics) RecordUpload(_ context.Context, outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

type PrometheusDMMetrics struct {
	sent  *prometheus.CounterVec
	depth *prometheus.GaugeVec
}

func NewDMMetrics(reg prometheus.Registerer) *PrometheusDMMetrics {
	m := &PrometheusDMMetrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dm", Name: "messages_total",
			Help: "Direct messages by delivery outcome.",
		}, []string{"outcome"}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "dm", Name: "queue_depth",
			Help: "Pending direct messages per queue.",
		}, []string{"queue"}),
	}
	reg.MustRegister(m.sent, m.depth)
	return m
}

func (m *PrometheusDMMetrics) RecordDirectMessage(_ context.Context, outcome string) {
	m.sent.WithLabelValues(outcome).Inc()
}

func (m *PrometheusDMMetrics) RecordQueueDepth(_ context.Context, priority, normal int) {
	m.depth.WithLabelValues("priority").Set(float64(priority))
	m.depth.WithLabelValues("normal").Set(float64(normal))
}

// NoOpMetrics satisfies every metrics interface and records nothing.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordReplaysScanned(context.Context, int)                              {}
func (NoOpMetrics) RecordReconciliation(context.Context, string)                           {}
func (NoOpMetrics) RecordUpload(context.Context, string)                                   {}
func (NoOpMetrics) RecordDirectMessage(context.Context, string)                            {}
func (NoOpMetrics) RecordQueueDepth(context.Context, int, int)                             {}

var (
	_ OperationMetrics   = NoOpMetrics{}
	_ BallchasingMetrics = NoOpMetrics{}
	_ DMMetrics          = NoOpMetrics{}
	_ OperationMetrics   = (*PrometheusOperationMetrics)(nil)
	_ BallchasingMetrics = (*PrometheusBallchasingMetrics)(nil)
	_ DMMetrics          = (*PrometheusDMMetrics)(nil)
)
