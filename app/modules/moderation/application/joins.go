package moderationservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/bwmarrin/discordgo"
)

const colorKicked = 0xE74C3C

// HandleJoin screens a joining member when bot detection is on and posts the
// welcome message for members that are not kicked. Members who rejoin under a
// username another member used within SpamJoinWindow are kicked, and the
// first holder of the name with them. New accounts whose name contains a
// blacklisted fragment are kicked too.
func (s *ModerationService) HandleJoin(ctx context.Context, join Join) (JoinOutcome, error) {
	res, err := withTelemetry(s, ctx, "HandleJoin", join.GuildID, func(ctx context.Context) (ModerationResult[JoinOutcome], error) {
		out, err := s.handleJoin(ctx, join)
		if err != nil {
			return ModerationResult[JoinOutcome]{}, err
		}
		return results.SuccessResult[JoinOutcome, Failure](out), nil
	})
	if err != nil {
		return JoinOutcome{}, err
	}
	return *res.Success, nil
}

func (s *ModerationService) handleJoin(ctx context.Context, join Join) (JoinOutcome, error) {
	var out JoinOutcome

	enabled, err := s.BotDetection(ctx, join.GuildID)
	if err != nil {
		return out, err
	}
	if enabled {
		suspects, err := s.screen(ctx, join)
		if err != nil {
			return out, err
		}
		if len(suspects) > 0 {
			out.Kicks = s.kickAll(ctx, join.GuildID, suspects)
			return out, nil
		}
	}

	welcomed, err := s.welcome(ctx, join)
	if err != nil {
		return out, err
	}
	out.Welcomed = welcomed
	return out, nil
}

type suspect struct {
	recentJoin
	reason string
}

// screen returns the members to kick for this join.
func (s *ModerationService) screen(ctx context.Context, join Join) ([]suspect, error) {
	whitelist, err := s.WhitelistedUsers(ctx, join.GuildID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(whitelist, join.UserID) {
		return nil, nil
	}

	joined := recentJoin{userID: join.UserID, username: join.Username}
	if repeat, first := s.track(join.GuildID, joined); repeat {
		var out []suspect
		if first != nil {
			out = append(out, suspect{recentJoin: *first, reason: ReasonSpamJoinFirst})
		}
		return append(out, suspect{recentJoin: joined, reason: ReasonSpamJoin}), nil
	}

	if join.CreatedAt.IsZero() || s.now().Sub(join.CreatedAt) > NewAccountAge {
		return nil, nil
	}
	names, err := s.BlacklistedNames(ctx, join.GuildID)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(join.Username)
	for _, n := range names {
		if n != "" && strings.Contains(lower, n) {
			return []suspect{{recentJoin: joined, reason: ReasonSuspiciousAccount}}, nil
		}
	}
	return nil, nil
}

// track records a join in the spam window. It reports whether the username
// is a repeat, and returns the first member to hold it when this join is the
// second one.
func (s *ModerationService) track(guildID string, j recentJoin) (bool, *recentJoin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(guildID)

	byName, ok := s.recent[guildID]
	if !ok {
		byName = map[string]*joinWindow{}
		s.recent[guildID] = byName
	}
	key := strings.ToLower(j.username)
	w, ok := byName[key]
	if !ok {
		w = &joinWindow{}
		byName[key] = w
	}

	// a member leaving and rejoining is not a new holder of the name
	if slices.ContainsFunc(w.members, func(m recentJoin) bool { return m.userID == j.userID }) {
		return len(w.members) > 1, nil
	}

	w.members = append(w.members, j)
	w.last = s.now()
	if len(w.members) == 2 {
		first := w.members[0]
		return true, &first
	}
	return len(w.members) > 1, nil
}

// prune drops windows whose last join is older than SpamJoinWindow. The
// caller holds s.mu.
func (s *ModerationService) prune(guildID string) {
	now := s.now()
	for name, w := range s.recent[guildID] {
		if now.Sub(w.last) > SpamJoinWindow {
			delete(s.recent[guildID], name)
		}
	}
}

func (s *ModerationService) kickAll(ctx context.Context, guildID string, suspects []suspect) []Kick {
	guild, err := s.discord.Guild(ctx, guildID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch guild for kick notice",
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
		guild = discord.Guild{ID: guildID, Name: "the server"}
	}
	logChannel, err := settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyEventLogChannel)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read event log channel", slog.String("guild_id", guildID), slog.Any("error", err))
	}

	kicks := make([]Kick, 0, len(suspects))
	for _, sp := range suspects {
		k := s.kick(ctx, guild, sp)
		kicks = append(kicks, k)
		if logChannel != nil {
			s.logKick(ctx, *logChannel, k)
		}
	}
	s.logger.InfoContext(ctx, "Suspected bot accounts kicked",
		slog.String("guild_id", guildID),
		slog.String("reason", suspects[len(suspects)-1].reason),
		slog.Int("count", len(kicks)),
	)
	return kicks
}

// kick tells the member why before removing them, since the DM channel is
// unreachable once they share no guild with the bot.
func (s *ModerationService) kick(ctx context.Context, guild discord.Guild, sp suspect) Kick {
	notice := discord.Message{Embed: &discordgo.MessageEmbed{
		Title:       "Message from " + guild.Name,
		Description: kickNotice(guild),
		Color:       colorKicked,
	}}
	if err := s.discord.SendDirect(ctx, sp.userID, notice); err != nil {
		s.logger.DebugContext(ctx, "Could not notify kicked member", slog.String("user_id", sp.userID), slog.Any("error", err))
	}

	k := Kick{UserID: sp.userID, Username: sp.username, Reason: sp.reason}
	if err := s.discord.Kick(ctx, guild.ID, sp.userID, "suspected bot: "+sp.reason); err != nil {
		k.Err = err
		s.logger.ErrorContext(ctx, "Failed to kick suspected bot",
			slog.String("guild_id", guild.ID),
			slog.String("user_id", sp.userID),
			slog.Any("error", err),
		)
	}
	return k
}

func kickNotice(guild discord.Guild) string {
	msg := fmt.Sprintf("You have been flagged as a bot account and **kicked** from **%s**.", guild.Name)
	if guild.OwnerID != "" {
		msg += "\n\nIf this was a mistake or the issue persists, please send a message to " + discord.UserMention(guild.OwnerID) + "."
	}
	return msg + "\n\nWe apologize for the inconvenience."
}

func (s *ModerationService) logKick(ctx context.Context, channelID string, k Kick) {
	content := fmt.Sprintf("**%s** (id: %s) has been flagged as a bot account and **kicked** from the server (Reason: %s).",
		k.Username, k.UserID, k.Reason)
	if k.Err != nil {
		content = fmt.Sprintf("**%s** (id: %s) has been flagged as a bot account, but an error occurred when **kicking** them from the server (Reason: %s).",
			k.Username, k.UserID, k.Reason)
	}
	if _, err := s.discord.Send(ctx, channelID, discord.Message{Content: content}); err != nil {
		s.logger.WarnContext(ctx, "Failed to post to event log", slog.String("channel_id", channelID), slog.Any("error", err))
	}
}

// welcome posts the welcome message to the guild's system channel. It
// reports false when either is unset.
func (s *ModerationService) welcome(ctx context.Context, join Join) (bool, error) {
	tmpl, err := settingsservice.GetString(ctx, s.store, join.GuildID, settingsservice.KeyWelcomeMessage)
	if err != nil || tmpl == nil {
		return false, err
	}
	guild, err := s.discord.Guild(ctx, join.GuildID)
	if err != nil {
		return false, err
	}
	if guild.SystemChannelID == "" {
		return false, nil
	}
	content := WelcomeText(*tmpl, discord.UserMention(join.UserID), guild.Name)
	if _, err := s.discord.Send(ctx, guild.SystemChannelID, discord.Message{Content: content}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send welcome message",
			slog.String("guild_id", join.GuildID),
			slog.Any("error", err),
		)
		return false, nil
	}
	return true, nil
}

// WelcomeText fills the {member} and {guild} placeholders.
func WelcomeText(tmpl, member, guild string) string {
	return strings.NewReplacer("{member}", member, "{guild}", guild).Replace(tmpl)
}
