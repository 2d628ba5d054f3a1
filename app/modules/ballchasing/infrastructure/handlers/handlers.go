package bchandlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
)

// Reporter is the service surface the handlers drive.
type Reporter interface {
	ReportMatches(ctx context.Context, guildID string, matchDay int, invokerID string) (bcservice.BallchasingResult[bcservice.MatchDayReport], error)
}

// Handlers consumes ballchasing events.
type Handlers struct {
	service Reporter
	logger  *slog.Logger
}

func NewHandlers(service Reporter, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// HandleMatchDayReportRequested reports a match day. Per-match outcomes are
// published by the service; a run that cannot start is announced as skipped.
func (h *Handlers) HandleMatchDayReportRequested(
	ctx context.Context,
	payload *bcservice.MatchDayReportRequestedPayload,
) ([]eventbus.Result, error) {
	result, err := h.service.ReportMatches(ctx, payload.GuildID, payload.MatchDay, "")
	if err != nil {
		return nil, err
	}

	if result.Failure != nil {
		h.logger.WarnContext(ctx, "Match day report skipped",
			slog.String("guild_id", payload.GuildID),
			slog.Int("match_day", payload.MatchDay),
			slog.Any("failure", result.Failure.Err),
		)
		return []eventbus.Result{{
			Topic: eventbus.MatchDayReportSkippedV1,
			Payload: bcservice.MatchDayReportSkippedPayload{
				GuildID:  payload.GuildID,
				MatchDay: payload.MatchDay,
				Reason:   result.Failure.Err.Error(),
			},
		}}, nil
	}

	h.logger.InfoContext(ctx, "Match day report finished",
		slog.String("guild_id", payload.GuildID),
		slog.Int("match_day", result.Success.MatchDay),
		slog.Int("reported", len(result.Success.Reported)),
		slog.Int("failed", len(result.Success.Failed)),
	)
	return nil, nil
}
