package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/bot"
	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	"github.com/Black-And-White-Club/rsc-league-bot/app/httpapi"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing"
	checkinservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/checkin/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	moderationservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/moderation/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	settingsdb "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories"
	ticketservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/tickets/application"
	transactionservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/transactions/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/config"
	"github.com/Black-And-White-Club/rsc-league-bot/db/bundb"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

// App is the wired bot process.
type App struct {
	cfg    *config.Config
	obs    *observability.Observability
	logger *slog.Logger

	db      *bun.DB
	bus     *eventbus.Bus
	router  *message.Router
	session *discordgo.Session

	Bot         *bot.Bot
	DM          *dm.Module
	Ballchasing *ballchasing.Module
	HTTP        *httpapi.Server
}

// New connects to the database, the event bus and Discord and builds every
// module. Nothing runs until Run.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(cfg.Observability)
	logger := obs.Logger
	metrics := obs.Metrics.Operations

	a := &App{cfg: cfg, obs: obs, logger: logger}

	db, err := bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	if cfg.NATS.URL == "" {
		logger.Info("No NATS URL configured, using the in-process event bus")
		a.bus = eventbus.NewInMemoryBus(logger)
	} else {
		bus, err := eventbus.NewNATSBus(cfg.NATS.URL, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.bus = bus
	}
	router, err := eventbus.NewRouter(a.bus.Logger())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	a.router = router

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	a.session = session
	dc := discord.NewSession(session)

	settings := settingsservice.NewService(settingsdb.NewRepository(), db, logger)
	league := leagueservice.NewLeagueService(settings, dc, logger, metrics, obs.Tracer)
	schedule := scheduleservice.NewScheduleService(settings, league, logger, metrics, obs.Tracer)

	bc, err := ballchasing.NewModule(ctx, ballchasing.Deps{
		Config:   cfg,
		Store:    settings,
		League:   league,
		Matches:  schedule,
		Discord:  dc,
		Bus:      a.bus,
		Router:   router,
		Registry: obs.Registry,
		Metrics:  metrics,
		Tracer:   obs.Tracer,
		Logger:   logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Ballchasing = bc
	schedule.SetReportScheduler(bc.Queue)

	a.DM = dm.NewModule(cfg, settings, dc, logger, metrics, obs.Metrics.DM, obs.Tracer)
	transactions := transactionservice.NewTransactionService(settings, league, dc, a.DM.Dispatcher, logger, metrics, obs.Tracer)

	bot.NewAnnouncer(dc, settings, logger).Register(router, a.bus, obs.Tracer)

	a.Bot = bot.New(session, bot.Services{
		Settings:     settings,
		League:       league,
		Schedule:     schedule,
		Ballchasing:  bc.Service,
		Accounts:     bc.Accounts,
		DM:           a.DM.Dispatcher,
		Transactions: transactions,
		CheckIns:     checkinservice.NewCheckInService(settings, league, schedule, dc, logger, metrics, obs.Tracer),
		Moderation:   moderationservice.NewModerationService(settings, dc, logger, metrics, obs.Tracer),
		Tickets:      ticketservice.NewTicketService(settings, dc, logger, metrics, obs.Tracer),
	}, cfg.Discord.ApplicationID, cfg.Discord.GuildIDs, newAttachmentClient(), logger)

	a.HTTP = httpapi.NewServer(cfg.HTTP.Address, db, a.DM.Dispatcher, obs.Registry, logger)
	return a, nil
}

func newAttachmentClient() *fasthttp.Client {
	return &fasthttp.Client{
		Name:                "rsc-league-bot",
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxResponseBodySize: 8 << 20,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.router.Run(ctx); err != nil {
			return fmt.Errorf("event router: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-a.router.Running():
		case <-ctx.Done():
			return nil
		}
		a.logger.Info("Event router running")
		return a.Ballchasing.Run(ctx)
	})
	g.Go(func() error { return a.DM.Run(ctx) })
	g.Go(func() error { return a.HTTP.Run(ctx) })
	g.Go(func() error { return a.Bot.Run(ctx) })

	err := g.Wait()
	a.logger.Info("Shutting down")
	return err
}

// Close releases connections. It is safe on a partially built App.
func (a *App) Close() {
	if a.router != nil {
		if err := a.router.Close(); err != nil {
			a.logger.Error("Failed to close event router", slog.Any("error", err))
		}
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.Error("Failed to close event bus", slog.Any("error", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database", slog.Any("error", err))
		}
	}
}
