package ballchasing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	bcaccounts "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/accounts"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	bchandlers "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/handlers"
	bcqueue "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/queue"
	bcrouter "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/router"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Deps are the collaborators the module is built from.
type Deps struct {
	Config   *config.Config
	Store    settingsservice.Store
	League   bcservice.LeagueDirectory
	Matches  bcservice.MatchDirectory
	Discord  discord.Client
	Bus      eventbus.EventBus
	Router   *message.Router
	Registry *prometheus.Registry
	Metrics  observability.OperationMetrics
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

// Module owns replay reconciliation and its scheduled runs.
type Module struct {
	Service  *bcservice.BallchasingService
	Accounts *bcaccounts.Registered
	Queue    *bcqueue.Service
	Router   *bcrouter.BallchasingRouter
	logger   *slog.Logger
}

func NewModule(ctx context.Context, d Deps) (*Module, error) {
	cfg := d.Config.Ballchasing
	hc := bcclient.NewHTTPClient(cfg.RequestTimeout)
	registry := bcservice.NewRegistry(d.Store, func(token string) bcservice.API {
		return bcclient.NewClient(cfg.BaseURL, token,
			bcclient.WithHTTPClient(hc),
			bcclient.WithTimeout(cfg.RequestTimeout),
			bcclient.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)),
		)
	})

	registered := bcaccounts.NewRegistered(d.Store)
	lookup := bcaccounts.Chain{registered}
	if base := d.Config.Accounts.BaseURL; base != "" {
		lookup = append(lookup, bcaccounts.NewHTTPLookup(base, d.Config.Accounts.APIKey, hc, cfg.RequestTimeout))
	}

	var bcMetrics observability.BallchasingMetrics = observability.NoOpMetrics{}
	if d.Registry != nil {
		bcMetrics = observability.NewBallchasingMetrics(d.Registry)
	}

	svc := bcservice.NewBallchasingService(
		d.Store,
		registry,
		d.League,
		d.Matches,
		lookup,
		d.Discord,
		d.Logger,
		d.Metrics,
		d.Tracer,
		bcservice.WithSearchCount(cfg.SearchCount),
		bcservice.WithEventBus(d.Bus),
		bcservice.WithBallchasingMetrics(bcMetrics),
	)

	queue, err := bcqueue.NewService(ctx, d.Config.Postgres.DSN, d.Bus, d.Logger, d.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create report queue: %w", err)
	}

	router := bcrouter.NewBallchasingRouter(d.Logger, d.Router, d.Bus, d.Tracer, d.Registry)
	if err := router.Configure(ctx, bchandlers.NewHandlers(svc, d.Logger)); err != nil {
		return nil, fmt.Errorf("failed to configure ballchasing router: %w", err)
	}

	return &Module{
		Service:  svc,
		Accounts: registered,
		Queue:    queue,
		Router:   router,
		logger:   d.Logger,
	}, nil
}

// Run processes scheduled reports until ctx is done.
func (m *Module) Run(ctx context.Context) error {
	if err := m.Queue.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Queue.Stop(stopCtx); err != nil {
		m.logger.Error("Failed to stop report queue", slog.Any("error", err))
		return err
	}
	return nil
}
