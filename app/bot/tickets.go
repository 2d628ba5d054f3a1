package bot

import (
	"context"
	"fmt"

	ticketservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/tickets/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

var ticketKinds = []string{
	string(ticketservice.KindRules),
	string(ticketservice.KindNumbers),
	string(ticketservice.KindMods),
}

func (b *Bot) handleAssignTicket(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Tickets.Assign(ctx, in.GuildID, in.ChannelID, in.String("kind"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(a ticketservice.Assignment) reply {
		to := string(a.Kind)
		if a.RoleID != "" {
			to = discord.RoleMention(a.RoleID)
		}
		return textReply("This ticket has been assigned to " + to)
	}), nil
}

func (b *Bot) handleSetTicketCategory(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Tickets.SetCategory(ctx, in.GuildID, in.String("kind"), in.OptionalString("category"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(r ticketservice.Route) reply {
		return optionalIDReply(titleKind(r.Kind)+" ticket category", optionalID(r.CategoryID), discord.ChannelMention)
	}), nil
}

func (b *Bot) handleSetTicketRole(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Tickets.SetRole(ctx, in.GuildID, in.String("kind"), in.OptionalString("role"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(r ticketservice.Route) reply {
		return optionalIDReply(titleKind(r.Kind)+" ticket role", optionalID(r.RoleID), discord.RoleMention)
	}), nil
}

func (b *Bot) handleShowTickets(ctx context.Context, in *invocation) (reply, error) {
	routes, err := b.svc.Tickets.Routes(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	embed := &discordgo.MessageEmbed{Title: "Ticket Routing", Color: colorInfo}
	for _, r := range routes {
		category, role := "Not set", "Not set"
		if r.CategoryID != "" {
			category = discord.ChannelMention(r.CategoryID)
		}
		if r.RoleID != "" {
			role = discord.RoleMention(r.RoleID)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   titleKind(r.Kind),
			Value:  fmt.Sprintf("Category: %s\nRole: %s", category, role),
			Inline: true,
		})
	}
	return reply{Embed: embed}, nil
}

func titleKind(k ticketservice.Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
