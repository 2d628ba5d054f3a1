package bot

import (
	"context"
	"fmt"
	"strings"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleTiers(ctx context.Context, in *invocation) (reply, error) {
	tiers, err := b.svc.League.Tiers(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	if len(tiers) == 0 {
		return textReply("No tiers registered."), nil
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       "Tiers",
		Description: strings.Join(tiers, "\n"),
		Color:       colorInfo,
	}}, nil
}

func (b *Bot) handleTeams(ctx context.Context, in *invocation) (reply, error) {
	teams, err := b.svc.League.Teams(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	tier := in.String("tier")

	embed := &discordgo.MessageEmbed{Title: "Teams", Color: colorInfo}
	byTier := map[string][]string{}
	var order []string
	for _, t := range teams {
		if tier != "" && !strings.EqualFold(t.Tier, tier) {
			continue
		}
		if _, ok := byTier[t.Tier]; !ok {
			order = append(order, t.Tier)
		}
		byTier[t.Tier] = append(byTier[t.Tier], fmt.Sprintf("**%s** (%s)", t.Name, t.GMName))
	}
	if len(order) == 0 {
		return textReply("No teams registered."), nil
	}
	for _, t := range order {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   t,
			Value:  listOrNone(byTier[t]),
			Inline: true,
		})
	}
	return reply{Embed: embed}, nil
}

func (b *Bot) handleRoster(ctx context.Context, in *invocation) (reply, error) {
	team, err := b.svc.League.TeamByName(ctx, in.GuildID, in.String("team"))
	if err != nil {
		return userError(err, leagueservice.ErrTeamNotFound)
	}
	roster, err := b.svc.League.Roster(ctx, in.GuildID, team)
	if err != nil {
		return reply{}, err
	}
	captain, hasCaptain, err := b.svc.League.Captain(ctx, in.GuildID, team)
	if err != nil {
		return reply{}, err
	}

	lines := make([]string, 0, len(roster))
	for _, m := range roster {
		line := m.Mention()
		if hasCaptain && m.ID == captain.ID {
			line += " (C)"
		}
		lines = append(lines, line)
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%s - %s)", team.Name, team.GMName, team.Tier),
		Description: listOrNone(lines),
		Color:       colorInfo,
	}}, nil
}

func (b *Bot) handleAddTier(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.League.AddTier(ctx, in.GuildID, in.String("name"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(name string) reply {
		return textReply("Added tier " + name + ".")
	}), nil
}

func (b *Bot) handleRemoveTier(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.League.RemoveTier(ctx, in.GuildID, in.String("name"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(name string) reply {
		return textReply("Removed tier " + name + " and its teams.")
	}), nil
}

func (b *Bot) handleAddTeam(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.League.AddTeam(ctx, in.GuildID, in.String("team"), in.String("gm"), in.String("tier"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(t leagueservice.Team) reply {
		return textReply(fmt.Sprintf("Added %s (%s - %s).", t.Name, t.GMName, t.Tier))
	}), nil
}

func (b *Bot) handleRemoveTeam(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.League.RemoveTeam(ctx, in.GuildID, in.String("team"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(t leagueservice.Team) reply {
		return textReply("Removed " + t.Name + ".")
	}), nil
}

func (b *Bot) handleSetPrefix(ctx context.Context, in *invocation) (reply, error) {
	gm := in.String("gm")
	res, err := b.svc.League.SetPrefix(ctx, in.GuildID, gm, in.String("prefix"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(prefix string) reply {
		return textReply(fmt.Sprintf("Prefix for %s set to %s.", gm, prefix))
	}), nil
}
