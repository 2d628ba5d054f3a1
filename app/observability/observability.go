package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Black-And-White-Club/rsc-league-bot/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "leaguebot"

// Observability bundles the logger, tracer and metric collectors shared by
// every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  *Metrics
}

// Metrics groups the collectors handed to individual services.
type Metrics struct {
	Operations  *PrometheusOperationMetrics
	Ballchasing *PrometheusBallchasingMetrics
	DM          *PrometheusDMMetrics
}

// New builds the process-wide observability bundle. The tracer comes from the
// global otel provider so an exporter can be installed by the host.
func New(cfg config.ObservabilityConfig) *Observability {
	logger := NewLogger(os.Stdout, cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(cfg.ServiceName),
		Registry: reg,
		Metrics: &Metrics{
			Operations:  NewOperationMetrics(reg),
			Ballchasing: NewBallchasingMetrics(reg),
			DM:          NewDMMetrics(reg),
		},
	}
}

// NewLogger returns a JSON slog logger at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NopLogger discards everything. Used by tests.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
