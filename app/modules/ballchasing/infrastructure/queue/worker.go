package bcqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	"github.com/riverqueue/river"
)

// MatchDayReportWorker hands due match days to the event router.
type MatchDayReportWorker struct {
	river.WorkerDefaults[MatchDayReportJob]
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewMatchDayReportWorker(bus eventbus.EventBus, logger *slog.Logger) *MatchDayReportWorker {
	return &MatchDayReportWorker{bus: bus, logger: logger}
}

func (w *MatchDayReportWorker) Work(ctx context.Context, job *river.Job[MatchDayReportJob]) error {
	w.logger.InfoContext(ctx, "Match day report due",
		slog.String("guild_id", job.Args.GuildID),
		slog.Int("match_day", job.Args.MatchDay),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	msg, err := eventbus.NewMessage(ctx, job.Args.GuildID, bcservice.MatchDayReportRequestedPayload{
		GuildID:  job.Args.GuildID,
		MatchDay: job.Args.MatchDay,
	})
	if err != nil {
		return err
	}
	if err := w.bus.Publish(eventbus.MatchDayReportRequestedV1, msg); err != nil {
		return fmt.Errorf("failed to publish match day report request: %w", err)
	}
	return nil
}
