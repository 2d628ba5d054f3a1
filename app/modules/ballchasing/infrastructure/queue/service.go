package bcqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const serviceName = "river"

// inserter is the part of the River client scheduling needs.
type inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Service schedules automatic match day reports with River.
type Service struct {
	client   *river.Client[pgx.Tx]
	inserter inserter
	pool     *pgxpool.Pool
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	now      func() time.Time
}

var _ scheduleservice.ReportScheduler = (*Service)(nil)

// NewService connects River to Postgres and registers the report worker.
func NewService(ctx context.Context, dsn string, bus eventbus.EventBus, logger *slog.Logger, metrics observability.OperationMetrics) (*Service, error) {
	logger = logger.With(slog.String("component", "river_queue"))
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewMatchDayReportWorker(bus, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			queueName:          {MaxWorkers: 2},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	logger.Info("Report queue initialized")

	s := newService(client, logger, metrics)
	s.client = client
	s.pool = pool
	return s, nil
}

func newService(ins inserter, logger *slog.Logger, metrics observability.OperationMetrics) *Service {
	return &Service{
		inserter: ins,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Start runs the River workers until Stop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", serviceName)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", serviceName)
	s.logger.Info("Report queue started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", serviceName)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Report queue stopped")
	return nil
}

// ScheduleMatchDayReport queues a reconciliation of the match day at the
// given time. Times already in the past are skipped: the match day can be
// reported by hand.
func (s *Service) ScheduleMatchDayReport(ctx context.Context, guildID string, matchDay int, at time.Time) error {
	start := s.now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_match_day_report", serviceName)

	logger := s.logger.With(
		slog.String("guild_id", guildID),
		slog.Int("match_day", matchDay),
		slog.Time("report_at", at),
	)

	if !at.After(start) {
		logger.InfoContext(ctx, "Report time has passed, not scheduling")
		s.metrics.RecordOperationSuccess(ctx, "schedule_match_day_report", serviceName)
		return nil
	}

	res, err := s.inserter.Insert(ctx, MatchDayReportJob{
		GuildID:  guildID,
		MatchDay: matchDay,
		ReportAt: at.Unix(),
	}, &river.InsertOpts{
		Queue:       queueName,
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to schedule match day report", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "schedule_match_day_report", serviceName)
		return fmt.Errorf("failed to schedule match day report: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_match_day_report", serviceName)
	s.metrics.RecordOperationDuration(ctx, "schedule_match_day_report", serviceName, s.now().Sub(start))
	if res.UniqueSkippedAsDuplicate {
		logger.DebugContext(ctx, "Match day report already scheduled", slog.Int64("job_id", res.Job.ID))
		return nil
	}
	logger.InfoContext(ctx, "Match day report scheduled",
		slog.Int64("job_id", res.Job.ID),
		slog.Duration("delay", at.Sub(start)),
	)
	return nil
}

// HealthCheck pings the queue database.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("river pool is not initialized")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}
