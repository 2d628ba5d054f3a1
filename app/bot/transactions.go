package bot

import (
	"context"

	transactionservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/transactions/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

func transactionReply(t transactionservice.Transaction) reply {
	msg := t.Announcement
	if t.CutNoticeSent {
		msg += "\nThe cut message was queued to the player."
	}
	return textReply(msg)
}

func (b *Bot) handleSign(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Transactions.Sign(ctx, in.GuildID, in.ID("member"), in.String("team"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, transactionReply), nil
}

func (b *Bot) handleCut(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Transactions.Cut(ctx, in.GuildID, in.ID("member"), in.String("team"), in.String("fa_tier"), in.origin())
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, transactionReply), nil
}

func (b *Bot) handleTrade(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Transactions.Trade(ctx, in.GuildID,
		in.ID("member"), in.String("team"),
		in.ID("member2"), in.String("team2"),
	)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, transactionReply), nil
}

func (b *Bot) handleSetTransChannel(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Transactions.SetTransChannel(ctx, in.GuildID, in.OptionalString("channel"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(id *string) reply {
		return optionalIDReply("Transaction channel", id, discord.ChannelMention)
	}), nil
}

func (b *Bot) handleSetCutMessage(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Transactions.SetCutMessage(ctx, in.GuildID, in.OptionalString("message"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(msg *string) reply {
		if msg == nil {
			return textReply("Cut message cleared.")
		}
		return textReply("Cut message set:\n>>> " + *msg)
	}), nil
}
