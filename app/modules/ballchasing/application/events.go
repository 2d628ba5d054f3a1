package bcservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
)

// MatchDayReportRequestedPayload asks for a match day to be reconciled.
// MatchDay 0 selects the guild's current match day.
type MatchDayReportRequestedPayload struct {
	GuildID  string `json:"guild_id"`
	MatchDay int    `json:"match_day"`
}

// MatchDayReportSkippedPayload explains why a requested run did not start.
type MatchDayReportSkippedPayload struct {
	GuildID  string `json:"guild_id"`
	MatchDay int    `json:"match_day"`
	Reason   string `json:"reason"`
}

// MatchReportedPayload announces a reconciled match.
type MatchReportedPayload struct {
	GuildID string                       `json:"guild_id"`
	Match   scheduledomain.ScheduledMatch `json:"match"`
}

// MatchReportFailedPayload announces a match that could not be reconciled.
type MatchReportFailedPayload struct {
	GuildID     string                       `json:"guild_id"`
	Match       scheduledomain.ScheduledMatch `json:"match"`
	Reason      string                       `json:"reason"`
	GamesFound  int                          `json:"games_found"`
	Summary     string                       `json:"summary,omitempty"`
	Recoverable bool                         `json:"recoverable"`
}

// MatchDayReportCompletedPayload summarizes a bulk run.
type MatchDayReportCompletedPayload struct {
	GuildID  string   `json:"guild_id"`
	MatchDay int      `json:"match_day"`
	Reported []string `json:"reported"`
	Failed   []string `json:"failed"`
}

func (s *BallchasingService) publish(ctx context.Context, guildID, topic string, payload any) {
	if s.bus == nil {
		return
	}
	msg, err := eventbus.NewMessage(ctx, guildID, payload)
	if err == nil {
		err = s.bus.Publish(topic, msg)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			slog.String("topic", topic),
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
	}
}
