package dmservice

import (
	"context"
	"fmt"
	"log/slog"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
)

const reopenNotice = "%s I could not send you a direct message. Please enable DMs from server members and send me any message to receive it."

// markUnreachable tags the recipient with the DM failed role, pings them in
// the notice channel and keeps the message until they contact the bot. It
// does nothing when the guild has no DM failed role.
func (d *Dispatcher) markUnreachable(ctx context.Context, req Request) {
	if req.GuildID == "" {
		return
	}
	roleID, err := settingsservice.GetString(ctx, d.store, req.GuildID, settingsservice.KeyDMFailedRole)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to load DM failed role", slog.String("guild_id", req.GuildID), slog.Any("error", err))
		return
	}
	if roleID == nil {
		return
	}

	d.mu.Lock()
	users := d.backlog[req.GuildID]
	if users == nil {
		users = map[string][]Request{}
		d.backlog[req.GuildID] = users
	}
	first := len(users[req.RecipientID]) == 0
	req.Priority = true
	users[req.RecipientID] = append(users[req.RecipientID], req)
	d.mu.Unlock()

	if !first {
		return
	}
	if err := d.discord.AddRole(ctx, req.GuildID, req.RecipientID, *roleID); err != nil {
		d.logger.WarnContext(ctx, "Failed to add DM failed role",
			slog.String("guild_id", req.GuildID),
			slog.String("user_id", req.RecipientID),
			slog.Any("error", err),
		)
	}
	d.ghostPing(ctx, req.GuildID, req.RecipientID)
}

// ghostPing mentions the user in the notice channel and deletes the message
// straight away so only the notification remains.
func (d *Dispatcher) ghostPing(ctx context.Context, guildID, userID string) {
	channelID, err := settingsservice.GetString(ctx, d.store, guildID, settingsservice.KeyDMNoticeChannel)
	if err != nil || channelID == nil {
		return
	}
	msgID, err := d.discord.Send(ctx, *channelID, discord.Message{Content: fmt.Sprintf(reopenNotice, discord.UserMention(userID))})
	if err != nil {
		d.logger.WarnContext(ctx, "Failed to ping unreachable member", slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	if err := d.discord.Delete(ctx, *channelID, msgID); err != nil {
		d.logger.WarnContext(ctx, "Failed to delete DM notice", slog.String("user_id", userID), slog.Any("error", err))
	}
}

// HandleDirectMessage is called when a user messages the bot. The user's DM
// failed role is removed in every guild holding a backlog for them, and the
// backlog is queued again ahead of normal traffic. It returns the number of
// messages requeued. A guild's backlog is only taken once its failed role
// setting has been read, so an error leaves it in place for the next message.
func (d *Dispatcher) HandleDirectMessage(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, guildID := range d.backlogGuilds(userID) {
		roleID, err := settingsservice.GetString(ctx, d.store, guildID, settingsservice.KeyDMFailedRole)
		if err != nil {
			return count, err
		}
		reqs := d.takeBacklog(guildID, userID)
		if len(reqs) == 0 {
			continue
		}
		if roleID != nil {
			if err := d.discord.RemoveRole(ctx, guildID, userID, *roleID); err != nil {
				d.logger.WarnContext(ctx, "Failed to remove DM failed role",
					slog.String("guild_id", guildID),
					slog.String("user_id", userID),
					slog.Any("error", err),
				)
			}
		}
		for _, req := range reqs {
			if err := d.Enqueue(ctx, req); err != nil {
				return count, err
			}
			count++
		}
		d.logger.InfoContext(ctx, "Requeued DM backlog",
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int("count", len(reqs)),
		)
	}
	return count, nil
}

func (d *Dispatcher) backlogGuilds(userID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var guilds []string
	for guildID, users := range d.backlog {
		if len(users[userID]) > 0 {
			guilds = append(guilds, guildID)
		}
	}
	return guilds
}

func (d *Dispatcher) takeBacklog(guildID, userID string) []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	reqs := d.backlog[guildID][userID]
	delete(d.backlog[guildID], userID)
	return reqs
}

// Backlog returns how many messages are held for an unreachable member.
func (d *Dispatcher) Backlog(guildID, userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.backlog[guildID][userID])
}

// ForgetGuild drops the held messages of a guild the bot left.
func (d *Dispatcher) ForgetGuild(guildID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.backlog, guildID)
}

// SetFailedRole configures the role given to members who cannot be reached.
// A nil role disables the re-open workflow.
func (d *Dispatcher) SetFailedRole(ctx context.Context, guildID string, roleID *string) (DMResult[*string], error) {
	return withTelemetry(d, ctx, "SetFailedRole", guildID, func(ctx context.Context) (DMResult[*string], error) {
		if err := settingsservice.Set(ctx, d.store, guildID, settingsservice.KeyDMFailedRole, roleID); err != nil {
			return DMResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](roleID), nil
	})
}

// SetNoticeChannel configures where unreachable members are pinged. It
// requires the DM failed role to be set first.
func (d *Dispatcher) SetNoticeChannel(ctx context.Context, guildID string, channelID *string) (DMResult[*string], error) {
	return withTelemetry(d, ctx, "SetNoticeChannel", guildID, func(ctx context.Context) (DMResult[*string], error) {
		if channelID != nil {
			roleID, err := settingsservice.GetString(ctx, d.store, guildID, settingsservice.KeyDMFailedRole)
			if err != nil {
				return DMResult[*string]{}, err
			}
			if roleID == nil {
				return fail[*string](ErrReopenDisabled), nil
			}
		}
		if err := settingsservice.Set(ctx, d.store, guildID, settingsservice.KeyDMNoticeChannel, channelID); err != nil {
			return DMResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](channelID), nil
	})
}
