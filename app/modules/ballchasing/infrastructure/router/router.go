package bcrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bchandlers "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// BallchasingRouter binds ballchasing topics to their handlers.
type BallchasingRouter struct {
	logger *slog.Logger
	Router *message.Router
	bus    eventbus.EventBus
	tracer trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewBallchasingRouter builds the router. A nil registry disables router
// metrics.
func NewBallchasingRouter(
	logger *slog.Logger,
	router *message.Router,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *BallchasingRouter {
	var builder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		builder = &b
	}
	return &BallchasingRouter{
		logger:         logger,
		Router:         router,
		bus:            bus,
		tracer:         tracer,
		metricsBuilder: builder,
	}
}

func (r *BallchasingRouter) Configure(_ context.Context, h *bchandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}
	registerHandler(r, eventbus.MatchDayReportRequestedV1, h.HandleMatchDayReportRequested)
	return nil
}

func registerHandler[T any](r *BallchasingRouter, topic string, handler func(context.Context, *T) ([]eventbus.Result, error)) {
	name := "ballchasing." + topic
	r.Router.AddHandler(
		name,
		topic,
		r.bus,
		"", // output topic comes from message metadata
		eventbus.RoutingPublisher(r.bus),
		eventbus.WrapTyped(name, r.logger, r.tracer, handler),
	)
}
