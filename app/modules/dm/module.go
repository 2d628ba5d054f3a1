package dm

import (
	"context"
	"log/slog"

	dmservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/config"
	"go.opentelemetry.io/otel/trace"
)

// Module owns the direct message queue.
type Module struct {
	Dispatcher *dmservice.Dispatcher
	logger     *slog.Logger
}

func NewModule(
	cfg *config.Config,
	store settingsservice.Store,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	dmMetrics observability.DMMetrics,
	tracer trace.Tracer,
) *Module {
	return &Module{
		Dispatcher: dmservice.NewDispatcher(dc, store, cfg.DM.SendInterval, logger, metrics, tracer,
			dmservice.WithDMMetrics(dmMetrics),
		),
		logger: logger,
	}
}

// Run drains the queue until ctx is done.
func (m *Module) Run(ctx context.Context) error {
	m.logger.Info("DM dispatcher started")
	defer m.logger.Info("DM dispatcher stopped")
	return m.Dispatcher.Run(ctx)
}
