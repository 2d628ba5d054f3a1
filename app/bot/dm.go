package bot

import (
	"context"
	"fmt"

	dmservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

func (in *invocation) origin() *dmservice.Origin {
	return &dmservice.Origin{GuildID: in.GuildID, ChannelID: in.ChannelID, RequesterID: in.UserID}
}

func (b *Bot) handleDMMember(ctx context.Context, in *invocation) (reply, error) {
	userID := in.ID("member")
	err := b.svc.DM.Enqueue(ctx, dmservice.Request{
		GuildID:     in.GuildID,
		RecipientID: userID,
		Message:     discord.Message{Content: in.String("message")},
		Origin:      in.origin(),
	})
	if err != nil {
		return userError(err, dmservice.ErrEmptyMessage, dmservice.ErrNoRecipient)
	}
	return textReply("Queued a message to " + discord.UserMention(userID) + "."), nil
}

func (b *Bot) handleDMRole(ctx context.Context, in *invocation) (reply, error) {
	roleID := in.ID("role")
	res, err := b.svc.DM.EnqueueRole(ctx, in.GuildID, roleID, discord.Message{Content: in.String("message")}, in.origin())
	if err != nil {
		return userError(err, dmservice.ErrEmptyMessage)
	}
	return resultReply(res, func(n int) reply {
		return textReply(fmt.Sprintf("Queued %d messages to %s.", n, discord.RoleMention(roleID)))
	}), nil
}

func (b *Bot) handleSetDMFailedRole(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.DM.SetFailedRole(ctx, in.GuildID, in.OptionalString("role"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(id *string) reply {
		return optionalIDReply("DM failed role", id, discord.RoleMention)
	}), nil
}

func (b *Bot) handleSetDMNoticeChannel(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.DM.SetNoticeChannel(ctx, in.GuildID, in.OptionalString("channel"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(id *string) reply {
		return optionalIDReply("DM notice channel", id, discord.ChannelMention)
	}), nil
}

func optionalIDReply(label string, id *string, mention func(string) string) reply {
	if id == nil {
		return textReply(label + " cleared.")
	}
	return textReply(label + " set to " + mention(*id) + ".")
}
