package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	bcaccounts "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/accounts"
	checkinservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/checkin/application"
	dmservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm/application"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	moderationservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/moderation/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	ticketservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/tickets/application"
	transactionservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/transactions/application"
	"github.com/bwmarrin/discordgo"
	"github.com/valyala/fasthttp"
)

// commandTimeout bounds a single command. Reporting a match downloads and
// uploads replays, so it is generous.
const commandTimeout = 5 * time.Minute

// Services are the module services commands drive.
type Services struct {
	Settings     *settingsservice.Service
	League       *leagueservice.LeagueService
	Schedule     *scheduleservice.ScheduleService
	Ballchasing  *bcservice.BallchasingService
	Accounts     *bcaccounts.Registered
	DM           *dmservice.Dispatcher
	Transactions *transactionservice.TransactionService
	CheckIns     *checkinservice.CheckInService
	Moderation   *moderationservice.ModerationService
	Tickets      *ticketservice.TicketService
}

// Bot dispatches gateway events to the module services.
type Bot struct {
	session  *discordgo.Session
	svc      Services
	appID    string
	guildIDs []string
	http     *fasthttp.Client
	logger   *slog.Logger

	routes map[string]handlerFunc
	defs   []*discordgo.ApplicationCommand
	ctx    context.Context
}

// New builds the bot. Commands are registered in each of guildIDs, or
// globally when none are given.
func New(session *discordgo.Session, svc Services, appID string, guildIDs []string, hc *fasthttp.Client, logger *slog.Logger) *Bot {
	b := &Bot{
		session:  session,
		svc:      svc,
		appID:    appID,
		guildIDs: guildIDs,
		http:     hc,
		logger:   logger,
		ctx:      context.Background(),
	}
	b.defs, b.routes = commandTable(b.commands())

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleMessageCreate)
	session.AddHandler(b.handleGuildMemberAdd)
	session.AddHandler(b.handleGuildDelete)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Bot is ready", slog.Int("guilds", len(r.Guilds)))
	})
	return b
}

// Run connects to the gateway, registers commands and blocks until ctx is
// done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			b.logger.Error("Failed to close Discord session", slog.Any("error", err))
		}
	}()

	appID := b.appID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	if err := b.registerCommands(appID); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func (b *Bot) registerCommands(appID string) error {
	guilds := b.guildIDs
	if len(guilds) == 0 {
		guilds = []string{""}
	}
	for _, g := range guilds {
		registered, err := b.session.ApplicationCommandBulkOverwrite(appID, g, b.defs)
		if err != nil {
			return fmt.Errorf("failed to register commands in %q: %w", g, err)
		}
		b.logger.Info("Slash commands registered", slog.String("guild_id", g), slog.Int("count", len(registered)))
	}
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	in := newInvocation(i)
	h, ok := b.routes[in.route()]
	if !ok {
		b.logger.Warn("Unknown command", slog.String("command", in.route()))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Error("Failed to acknowledge command", slog.String("command", in.route()), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	r := b.dispatch(ctx, h, in)
	if _, err := s.InteractionResponseEdit(i.Interaction, r.webhookEdit()); err != nil {
		b.logger.Error("Failed to send command response", slog.String("command", in.route()), slog.Any("error", err))
	}
}

func (b *Bot) dispatch(ctx context.Context, h handlerFunc, in *invocation) reply {
	b.logger.DebugContext(ctx, "Received command",
		slog.String("command", in.route()),
		slog.String("guild_id", in.GuildID),
		slog.String("user_id", in.UserID),
	)
	r, err := h(ctx, in)
	if err != nil {
		b.logger.ErrorContext(ctx, "Command failed",
			slog.String("command", in.route()),
			slog.String("guild_id", in.GuildID),
			slog.Any("error", err),
		)
		return textReply(":x: Something went wrong while running that command.")
	}
	if r.Content == "" && r.Embed == nil && len(r.Files) == 0 {
		r.Content = "Done"
	}
	return r
}

// handleMessageCreate treats any direct message to the bot as the member
// re-opening their DMs.
func (b *Bot) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID != "" || m.Author == nil || m.Author.Bot {
		return
	}
	n, err := b.svc.DM.HandleDirectMessage(b.ctx, m.Author.ID)
	if err != nil {
		b.logger.Error("Failed to requeue direct messages", slog.String("user_id", m.Author.ID), slog.Any("error", err))
		return
	}
	if n > 0 {
		b.logger.Info("Member reopened direct messages", slog.String("user_id", m.Author.ID), slog.Int("requeued", n))
	}
}

func (b *Bot) handleGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	b.svc.Ballchasing.ForgetGuild(g.ID)
	b.svc.DM.ForgetGuild(g.ID)
	b.svc.Moderation.ForgetGuild(g.ID)
	b.svc.Settings.Forget(g.ID)
	b.logger.Info("Left guild", slog.String("guild_id", g.ID))
}
