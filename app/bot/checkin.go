package bot

import (
	"context"
	"fmt"
	"strings"

	checkinservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/checkin/application"
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleCheckIn(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.CheckIns.CheckIn(ctx, in.GuildID, in.UserID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(c checkinservice.CheckIn) reply {
		return reply{Embed: &discordgo.MessageEmbed{
			Title: "Checked In",
			Description: fmt.Sprintf("Thank you for checking in! GMs can now see that you're available for match day %d in the %s tier.",
				c.MatchDay, c.Tier),
			Color: colorSuccess,
		}}
	}), nil
}

func (b *Bot) handleCheckOut(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.CheckIns.CheckOut(ctx, in.GuildID, in.UserID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(c checkinservice.CheckIn) reply {
		return reply{Embed: &discordgo.MessageEmbed{
			Title:       "Checked Out",
			Description: fmt.Sprintf("You have been removed from the %s availability list for match day %d.", c.Tier, c.MatchDay),
			Color:       colorInfo,
		}}
	}), nil
}

func (b *Bot) handleAvailability(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.CheckIns.Availability(ctx, in.GuildID, in.String("tier"), in.Int("match_day"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, availabilityReply), nil
}

func availabilityReply(a checkinservice.Availability) reply {
	lines := make([]string, 0, len(a.Players))
	for _, p := range a.Players {
		line := p.Name
		if p.Permanent {
			line += " (Permanent FA)"
		}
		lines = append(lines, line)
	}
	desc := "No free agents have checked in."
	if len(lines) > 0 {
		desc = truncate(strings.Join(lines, "\n"), 4096)
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Availability for %s tier on match day %d:", a.Tier, a.MatchDay),
		Description: desc,
		Color:       colorInfo,
	}}
}

func (b *Bot) handleClearAvailability(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.CheckIns.ClearAvailability(ctx, in.GuildID, in.String("tier"), in.Int("match_day"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(c checkinservice.Cleared) reply {
		if c.Tier == "" {
			return textReply(fmt.Sprintf("Cleared every check-in for match day %d.", c.MatchDay))
		}
		return textReply(fmt.Sprintf("Cleared %s check-ins for match day %d.", c.Tier, c.MatchDay))
	}), nil
}

func (b *Bot) handleClearAllAvailability(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.CheckIns.ClearAllAvailability(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(struct{}) reply {
		return textReply("Cleared every check-in.")
	}), nil
}
