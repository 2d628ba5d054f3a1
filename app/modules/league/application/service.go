package leagueservice

import (
	"context"
	"log/slog"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// LeagueService manages tiers, franchises and teams for a guild.
type LeagueService struct {
	store   settingsservice.Store
	discord discord.Client
	logger  *slog.Logger
	tel     observability.Telemetry
}

func NewLeagueService(
	store settingsservice.Store,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *LeagueService {
	return &LeagueService{
		store:   store,
		discord: dc,
		logger:  logger,
		tel: observability.Telemetry{
			Service: "LeagueService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
	}
}

// LeagueResult is the result shape of league mutations.
type LeagueResult[S any] = results.OperationResult[S, Failure]

func withTelemetry[S any](
	s *LeagueService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (LeagueResult[S], error),
) (LeagueResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) LeagueResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}
