package bcservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcaccounts "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/accounts"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// LeagueDirectory is the league data reconciliation reads.
type LeagueDirectory interface {
	TeamByName(ctx context.Context, guildID, name string) (leagueservice.Team, error)
	TeamForUser(ctx context.Context, guildID, userID string) (leagueservice.Team, discord.Member, error)
	Roster(ctx context.Context, guildID string, team leagueservice.Team) ([]discord.Member, error)
	Captain(ctx context.Context, guildID string, team leagueservice.Team) (discord.Member, bool, error)
	TierRank(ctx context.Context, guildID, tier string) (int, error)
}

// MatchDirectory is the schedule data reconciliation reads and updates.
type MatchDirectory interface {
	MatchDay(ctx context.Context, guildID string) (int, error)
	TeamMatch(ctx context.Context, guildID, team string, day int) (scheduledomain.ScheduledMatch, error)
	MatchByID(ctx context.Context, guildID, matchID string) (scheduledomain.ScheduledMatch, error)
	UnreportedMatches(ctx context.Context, guildID string, day int) ([]scheduledomain.ScheduledMatch, error)
	AttachReport(ctx context.Context, guildID, matchID string, report scheduledomain.MatchReport) (scheduledomain.ScheduledMatch, error)
}

// Failure is the business failure payload for ballchasing operations.
type Failure struct {
	Err error
	// State is the partial search result, when a search ran.
	State *DiscoverySummary
}

func (f Failure) Error() string { return f.Err.Error() }

type BallchasingResult[S any] = results.OperationResult[S, Failure]

const defaultSearchCount = 10

// BallchasingService reconciles scheduled matches with uploaded replays.
type BallchasingService struct {
	store       settingsservice.Store
	registry    *Registry
	league      LeagueDirectory
	matches     MatchDirectory
	accounts    bcaccounts.Lookup
	discord     discord.Client
	bus         eventbus.EventBus
	logger      *slog.Logger
	metrics     observability.BallchasingMetrics
	tel         observability.Telemetry
	searchCount int
	now         func() time.Time

	// collapses concurrent reports of the same match
	inflight singleflight.Group
}

// Option customizes a BallchasingService.
type Option func(*BallchasingService)

func WithClock(now func() time.Time) Option {
	return func(s *BallchasingService) { s.now = now }
}

// WithSearchCount sets the page size of replay searches.
func WithSearchCount(n int) Option {
	return func(s *BallchasingService) {
		if n > 0 {
			s.searchCount = n
		}
	}
}

func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *BallchasingService) { s.bus = bus }
}

func WithBallchasingMetrics(m observability.BallchasingMetrics) Option {
	return func(s *BallchasingService) { s.metrics = m }
}

func NewBallchasingService(
	store settingsservice.Store,
	registry *Registry,
	league LeagueDirectory,
	matches MatchDirectory,
	accounts bcaccounts.Lookup,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *BallchasingService {
	s := &BallchasingService{
		store:    store,
		registry: registry,
		league:   league,
		matches:  matches,
		accounts: accounts,
		discord:  dc,
		logger:   logger,
		metrics:  observability.NoOpMetrics{},
		tel: observability.Telemetry{
			Service: "BallchasingService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
		searchCount: defaultSearchCount,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withTelemetry[S any](
	s *BallchasingService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (BallchasingResult[S], error),
) (BallchasingResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) BallchasingResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// ForgetGuild drops cached state for a guild the bot left.
func (s *BallchasingService) ForgetGuild(guildID string) {
	s.registry.Forget(guildID)
}
