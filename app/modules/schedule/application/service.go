package scheduleservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/infrastructure/parsers"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/brianvoe/gofakeit/v7"
	"go.opentelemetry.io/otel/trace"
)

// TeamDirectory resolves team names to registered teams.
type TeamDirectory interface {
	TeamByName(ctx context.Context, guildID, name string) (leagueservice.Team, error)
}

// ReportScheduler arranges for a match day to be reconciled automatically.
type ReportScheduler interface {
	ScheduleMatchDayReport(ctx context.Context, guildID string, matchDay int, at time.Time) error
}

// Failure is the business failure payload for schedule operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

type ScheduleResult[S any] = results.OperationResult[S, Failure]

// Schedules maps tier -> match day -> matches.
type Schedules map[string]map[int][]scheduledomain.ScheduledMatch

// ScheduleService owns the league schedule.
type ScheduleService struct {
	store     settingsservice.Store
	teams     TeamDirectory
	scheduler ReportScheduler
	parsers   *parsers.Factory
	logger    *slog.Logger
	tel       observability.Telemetry
	now       func() time.Time

	fakerMu sync.Mutex
	faker   *gofakeit.Faker

	// guards read-modify-write cycles on a guild's schedule
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option customizes a ScheduleService.
type Option func(*ScheduleService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *ScheduleService) { s.now = now }
}

// WithLobbySeed makes lobby generation deterministic.
func WithLobbySeed(seed uint64) Option {
	return func(s *ScheduleService) { s.faker = gofakeit.New(seed) }
}

// WithReportScheduler registers automatic match day reporting.
func WithReportScheduler(rs ReportScheduler) Option {
	return func(s *ScheduleService) { s.scheduler = rs }
}

func NewScheduleService(
	store settingsservice.Store,
	teams TeamDirectory,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *ScheduleService {
	s := &ScheduleService{
		store:   store,
		teams:   teams,
		parsers: parsers.NewFactory(),
		logger:  logger,
		tel: observability.Telemetry{
			Service: "ScheduleService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
		now:   time.Now,
		faker: gofakeit.New(0),
		locks: map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReportScheduler wires the scheduler after construction.
func (s *ScheduleService) SetReportScheduler(rs ReportScheduler) {
	s.scheduler = rs
}

func withTelemetry[S any](
	s *ScheduleService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (ScheduleResult[S], error),
) (ScheduleResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) ScheduleResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

func (s *ScheduleService) lock(guildID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[guildID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[guildID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *ScheduleService) schedules(ctx context.Context, guildID string) (Schedules, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeySchedules, Schedules{})
}

func (s *ScheduleService) saveSchedules(ctx context.Context, guildID string, sch Schedules) error {
	return settingsservice.Set(ctx, s.store, guildID, settingsservice.KeySchedules, sch)
}
