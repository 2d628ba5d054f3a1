package bcservice

import (
	"context"
	"fmt"
	"log/slog"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

const (
	statusSearching = "Searching https://ballchasing.com for publicly uploaded replays of this match..."
	statusUploading = ":signal_strength: Results confirmed. Creating a ballchasing replay group. This may take a few seconds..."
	statusColor     = 0x2E86C1
	statusSuccess   = 0x27AE60
	statusFailure   = 0xC0392B
)

// statusMessage is the embed that follows an interactive report. A nil
// statusMessage does nothing.
type statusMessage struct {
	discord   discord.Client
	logger    *slog.Logger
	channelID string
	messageID string
	embed     *discordgo.MessageEmbed
}

func (s *BallchasingService) newStatusMessage(_ context.Context, _ string, channelID string, match scheduledomain.ScheduledMatch) *statusMessage {
	if channelID == "" || s.discord == nil {
		return nil
	}
	return &statusMessage{
		discord:   s.discord,
		logger:    s.logger,
		channelID: channelID,
		embed: &discordgo.MessageEmbed{
			Title: fmt.Sprintf("Match Day %d: %s", match.MatchDay, match.Title()),
			Color: statusColor,
		},
	}
}

func (m *statusMessage) show(ctx context.Context, description string, color int) {
	if m == nil {
		return
	}
	m.embed.Description = description
	m.embed.Color = color
	msg := discord.Message{Embed: m.embed}

	var err error
	if m.messageID == "" {
		m.messageID, err = m.discord.Send(ctx, m.channelID, msg)
	} else {
		err = m.discord.Edit(ctx, m.channelID, m.messageID, msg)
	}
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to update report status message",
			slog.String("channel_id", m.channelID),
			slog.Any("error", err),
		)
	}
}

func (m *statusMessage) searching(ctx context.Context) {
	m.show(ctx, statusSearching, statusColor)
}

func (m *statusMessage) uploading(ctx context.Context, summary string) {
	m.show(ctx, fmt.Sprintf("Match summary:\n%s\n\n%s", summary, statusUploading), statusColor)
}

func (m *statusMessage) succeeded(ctx context.Context, summary, link string) {
	m.show(ctx, fmt.Sprintf("Match summary:\n%s\n\nView the ballchasing group: %s", summary, link), statusSuccess)
}

func (m *statusMessage) failed(ctx context.Context, err error) {
	m.show(ctx, ":x: "+err.Error(), statusFailure)
}
