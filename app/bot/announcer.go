package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace"
)

const (
	colorReported = 0x2ECC71
	colorFailed   = 0xE74C3C
	colorSkipped  = 0xF1C40F
)

// Announcer posts ballchasing outcomes to the guild's configured channels.
// Reported matches go to the replay channel, everything else to the log
// channel. Unset channels are skipped.
type Announcer struct {
	discord discord.Client
	store   settingsservice.Store
	logger  *slog.Logger
}

func NewAnnouncer(dc discord.Client, store settingsservice.Store, logger *slog.Logger) *Announcer {
	return &Announcer{discord: dc, store: store, logger: logger}
}

// Register subscribes the announcer to the ballchasing outcome topics.
func (a *Announcer) Register(router *message.Router, bus eventbus.EventBus, tracer trace.Tracer) {
	addAnnouncement(a, router, bus, tracer, eventbus.MatchReportedV1, a.HandleMatchReported)
	addAnnouncement(a, router, bus, tracer, eventbus.MatchReportFailedV1, a.HandleMatchReportFailed)
	addAnnouncement(a, router, bus, tracer, eventbus.MatchDayReportCompletedV1, a.HandleMatchDayReportCompleted)
	addAnnouncement(a, router, bus, tracer, eventbus.MatchDayReportSkippedV1, a.HandleMatchDayReportSkipped)
}

func addAnnouncement[T any](a *Announcer, router *message.Router, bus eventbus.EventBus, tracer trace.Tracer, topic string, h func(context.Context, *T) ([]eventbus.Result, error)) {
	name := "announcer." + topic
	router.AddHandler(
		name,
		topic,
		bus,
		"",
		eventbus.RoutingPublisher(bus),
		eventbus.WrapTyped(name, a.logger, tracer, h),
	)
}

func (a *Announcer) HandleMatchReported(ctx context.Context, p *bcservice.MatchReportedPayload) ([]eventbus.Result, error) {
	m := p.Match
	if m.Report == nil {
		return nil, nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s: Match Day %d", m.Tier, m.MatchDay),
		Description: m.Report.Summary,
		URL:         m.Report.GroupLink,
		Color:       colorReported,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winner", Value: m.Report.Winner, Inline: true},
			{Name: "Games", Value: fmt.Sprintf("%d", len(m.Report.ReplayIDs)), Inline: true},
		},
	}
	if m.Report.ReportedBy != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Reported By", Value: discord.UserMention(m.Report.ReportedBy), Inline: true,
		})
	}
	return nil, a.post(ctx, p.GuildID, settingsservice.KeyReplayDumpChannel, embed)
}

func (a *Announcer) HandleMatchReportFailed(ctx context.Context, p *bcservice.MatchReportFailedPayload) ([]eventbus.Result, error) {
	embed := &discordgo.MessageEmbed{
		Title:       "Could not report " + p.Match.Title(),
		Description: p.Reason,
		Color:       colorFailed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match Day", Value: fmt.Sprintf("%d", p.Match.MatchDay), Inline: true},
			{Name: "Games Found", Value: fmt.Sprintf("%d", p.GamesFound), Inline: true},
		},
	}
	if p.Summary != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Found", Value: p.Summary})
	}
	if p.Recoverable {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Retry with /bc report once all replays are uploaded."}
	}
	return nil, a.post(ctx, p.GuildID, settingsservice.KeyLogChannel, embed)
}

func (a *Announcer) HandleMatchDayReportCompleted(ctx context.Context, p *bcservice.MatchDayReportCompletedPayload) ([]eventbus.Result, error) {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Match Day %d Reporting Finished", p.MatchDay),
		Color: colorReported,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("Reported (%d)", len(p.Reported)), Value: listOrNone(p.Reported)},
			{Name: fmt.Sprintf("Not reported (%d)", len(p.Failed)), Value: listOrNone(p.Failed)},
		},
	}
	if len(p.Failed) > 0 {
		embed.Color = colorSkipped
	}
	return nil, a.post(ctx, p.GuildID, settingsservice.KeyLogChannel, embed)
}

func (a *Announcer) HandleMatchDayReportSkipped(ctx context.Context, p *bcservice.MatchDayReportSkippedPayload) ([]eventbus.Result, error) {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Match Day %d Reporting Skipped", p.MatchDay),
		Description: p.Reason,
		Color:       colorSkipped,
	}
	return nil, a.post(ctx, p.GuildID, settingsservice.KeyLogChannel, embed)
}

func (a *Announcer) post(ctx context.Context, guildID, key string, embed *discordgo.MessageEmbed) error {
	channelID, err := settingsservice.GetString(ctx, a.store, guildID, key)
	if err != nil {
		return err
	}
	if channelID == nil {
		a.logger.DebugContext(ctx, "No channel for announcement",
			slog.String("guild_id", guildID),
			slog.String("setting", key),
		)
		return nil
	}
	if _, err := a.discord.Send(ctx, *channelID, discord.Message{Embed: embed}); err != nil {
		return fmt.Errorf("failed to post announcement: %w", err)
	}
	return nil
}
