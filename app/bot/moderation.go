package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	moderationservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/moderation/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

// joinTimeout bounds screening and greeting a single joining member.
const joinTimeout = 30 * time.Second

func (b *Bot) handleGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, joinTimeout)
	defer cancel()

	join := moderationservice.Join{GuildID: m.GuildID, UserID: m.User.ID, Username: m.User.Username}
	if created, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		join.CreatedAt = created
	}
	out, err := b.svc.Moderation.HandleJoin(ctx, join)
	if err != nil {
		b.logger.Error("Failed to process member join",
			slog.String("guild_id", m.GuildID),
			slog.String("user_id", m.User.ID),
			slog.Any("error", err),
		)
		return
	}
	if out.Flagged() {
		b.logger.Info("Joining member flagged as a bot",
			slog.String("guild_id", m.GuildID),
			slog.String("user_id", m.User.ID),
			slog.Int("kicked", len(out.Kicks)),
		)
	}
}

func (b *Bot) handleSetBotDetection(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.SetBotDetection(ctx, in.GuildID, in.Bool("enabled"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(on bool) reply {
		if on {
			return textReply("Bot detection enabled.")
		}
		return textReply("Bot detection disabled.")
	}), nil
}

func (b *Bot) handleSetWelcomeMessage(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.SetWelcomeMessage(ctx, in.GuildID, in.OptionalString("message"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(msg *string) reply {
		if msg == nil {
			return textReply("Welcome message cleared.")
		}
		preview := moderationservice.WelcomeText(*msg, discord.UserMention(in.UserID), "this server")
		return textReply("Welcome message set. New members will see:\n>>> " + preview)
	}), nil
}

func (b *Bot) handleSetEventLogChannel(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.SetEventLogChannel(ctx, in.GuildID, in.OptionalString("channel"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(id *string) reply {
		return optionalIDReply("Event log channel", id, discord.ChannelMention)
	}), nil
}

func (b *Bot) handleBlacklistName(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.BlacklistName(ctx, in.GuildID, in.String("name"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, blacklistReply), nil
}

func (b *Bot) handleUnblacklistName(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.UnblacklistName(ctx, in.GuildID, in.String("name"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, blacklistReply), nil
}

func (b *Bot) handleShowBlacklist(ctx context.Context, in *invocation) (reply, error) {
	names, err := b.svc.Moderation.BlacklistedNames(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return blacklistReply(names), nil
}

func blacklistReply(names []string) reply {
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       "Blacklisted Names",
		Description: listOrNone(names),
		Color:       colorInfo,
	}}
}

func (b *Bot) handleWhitelistUser(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.WhitelistUser(ctx, in.GuildID, in.ID("member"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, whitelistReply), nil
}

func (b *Bot) handleUnwhitelistUser(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Moderation.UnwhitelistUser(ctx, in.GuildID, in.ID("member"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, whitelistReply), nil
}

func (b *Bot) handleShowWhitelist(ctx context.Context, in *invocation) (reply, error) {
	users, err := b.svc.Moderation.WhitelistedUsers(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return whitelistReply(users), nil
}

func whitelistReply(userIDs []string) reply {
	lines := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		lines = append(lines, discord.UserMention(id))
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       "Whitelisted Users",
		Description: listOrNone(lines),
		Color:       colorInfo,
	}}
}

func (b *Bot) handleRecentJoins(_ context.Context, in *invocation) (reply, error) {
	recent := b.svc.Moderation.RecentJoins(in.GuildID)
	if len(recent) == 0 {
		return textReply(fmt.Sprintf(":x: No members have joined in the past %d minutes.",
			int(moderationservice.SpamJoinWindow.Minutes()))), nil
	}
	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		lines = append(lines, fmt.Sprintf(" - %s (%d)", r.Name, r.Joins))
	}
	return textReply("__Recent Member Joins:__\n" + listOrNone(lines)), nil
}
