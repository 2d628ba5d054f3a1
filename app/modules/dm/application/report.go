package dmservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

const (
	reportTitle = "Failed Direct Messages"
	reportColor = 0xFF0000

	// Discord caps an embed at 25 fields; each failure takes three.
	failuresPerEmbed = 8
)

type failureGroup struct {
	channelID string
	failures  []failedDelivery
}

// reportFailures posts one summary per requesting channel and clears the
// buffer. Failures with no origin are only logged.
func (d *Dispatcher) reportFailures(ctx context.Context) {
	if len(d.failed) == 0 {
		return
	}
	failed := d.failed
	d.failed = nil

	for _, g := range groupByChannel(failed) {
		for start := 0; start < len(g.failures); start += failuresPerEmbed {
			end := min(start+failuresPerEmbed, len(g.failures))
			msg := failureReport(g.failures[start:end])
			if _, err := d.discord.Send(ctx, g.channelID, msg); err != nil {
				d.logger.ErrorContext(ctx, "Failed to post DM failure report",
					slog.String("channel_id", g.channelID),
					slog.Any("error", err),
				)
			}
		}
	}
}

func groupByChannel(failed []failedDelivery) []failureGroup {
	var groups []failureGroup
	index := map[string]int{}
	for _, f := range failed {
		if f.Origin == nil || f.Origin.ChannelID == "" {
			continue
		}
		i, ok := index[f.Origin.ChannelID]
		if !ok {
			i = len(groups)
			index[f.Origin.ChannelID] = i
			groups = append(groups, failureGroup{channelID: f.Origin.ChannelID})
		}
		groups[i].failures = append(groups[i].failures, f)
	}
	return groups
}

func failureReport(failures []failedDelivery) discord.Message {
	oldest := failures[0].At
	var (
		fields  []*discordgo.MessageEmbedField
		senders []string
		seen    = map[string]bool{}
	)
	for _, f := range failures {
		if f.At.Before(oldest) {
			oldest = f.At
		}
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Recipient", Value: discord.UserMention(f.RecipientID), Inline: true},
			&discordgo.MessageEmbedField{Name: "Sender", Value: senderMention(f.Origin), Inline: true},
			&discordgo.MessageEmbedField{Name: "Source", Value: f.Origin.Link(), Inline: true},
		)
		if id := f.Origin.RequesterID; id != "" && !seen[id] {
			seen[id] = true
			senders = append(senders, discord.UserMention(id))
		}
	}
	return discord.Message{
		Content: strings.Join(senders, " "),
		Embed: &discordgo.MessageEmbed{
			Title:       reportTitle,
			Description: fmt.Sprintf("Failed DMs since <t:%d:f>", oldest.Unix()),
			Color:       reportColor,
			Fields:      fields,
		},
	}
}

func senderMention(o *Origin) string {
	if o.RequesterID == "" {
		return "-"
	}
	return discord.UserMention(o.RequesterID)
}
