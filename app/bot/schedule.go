package bot

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/bwmarrin/discordgo"
)

// defaultMatchFormat is the regular season series length.
const defaultMatchFormat = "4-GS"

func (b *Bot) handleMatchDay(ctx context.Context, in *invocation) (reply, error) {
	day, err := b.svc.Schedule.MatchDay(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return textReply(fmt.Sprintf("It is match day %d.", day)), nil
}

func (b *Bot) handleMatches(ctx context.Context, in *invocation) (reply, error) {
	team := in.String("team")
	day := in.Int("match_day")

	var (
		matches []scheduledomain.ScheduledMatch
		title   string
		err     error
	)
	switch {
	case team != "" && !in.Has("match_day"):
		matches, err = b.svc.Schedule.TeamMatches(ctx, in.GuildID, team)
		title = team + " Schedule"
	default:
		if day == 0 {
			if day, err = b.svc.Schedule.MatchDay(ctx, in.GuildID); err != nil {
				return reply{}, err
			}
		}
		matches, err = b.svc.Schedule.MatchesForDay(ctx, in.GuildID, day)
		title = fmt.Sprintf("Match Day %d", day)
		if team != "" {
			var mine []scheduledomain.ScheduledMatch
			for _, m := range matches {
				if m.Involves(team) {
					mine = append(mine, m)
				}
			}
			matches = mine
			title = fmt.Sprintf("%s, Match Day %d", team, day)
		}
	}
	if err != nil {
		return reply{}, err
	}
	if len(matches) == 0 {
		return textReply("No matches found."), nil
	}

	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, matchLine(m, team != ""))
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       title,
		Description: truncate(strings.Join(lines, "\n"), 4096),
		Color:       colorInfo,
	}}, nil
}

// matchLine renders one match. Lobby details are only shown to team queries.
func matchLine(m scheduledomain.ScheduledMatch, lobby bool) string {
	line := fmt.Sprintf("`%s` MD %d, %s: **%s** vs **%s** (%s, %s)",
		m.ID, m.MatchDay, m.MatchDate, m.Home, m.Away, m.Tier, m.MatchFormat.Code())
	switch {
	case m.Reported():
		line += " " + m.Report.Summary
	case lobby && m.RoomName != "":
		line += fmt.Sprintf(" lobby `%s` / `%s`", m.RoomName, m.RoomPass)
	}
	return line
}

func (b *Bot) handleStandings(ctx context.Context, in *invocation) (reply, error) {
	tier := in.String("tier")
	standings, err := b.svc.Schedule.Standings(ctx, in.GuildID, tier)
	if err != nil {
		return reply{}, err
	}
	if len(standings) == 0 {
		return textReply("No matches scheduled for " + tier + "."), nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTeam\tW\tL\tGW\tGL\tDiff")
	for i, st := range standings {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%+d\n",
			i+1, st.Team, st.MatchWins, st.MatchLosses, st.GameWins, st.GameLosses, st.GameDiff())
	}
	if err := w.Flush(); err != nil {
		return reply{}, err
	}

	r := reply{Embed: &discordgo.MessageEmbed{
		Title:       tier + " Standings",
		Description: "```\n" + truncate(sb.String(), 4000) + "```",
		Color:       colorInfo,
	}}
	png, err := renderStandingsChart(tier, standings)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to render standings chart", slog.String("tier", tier), slog.Any("error", err))
		return r, nil
	}
	r.Files = []*discordgo.File{{Name: "standings.png", ContentType: "image/png", Reader: bytes.NewReader(png)}}
	r.Embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://standings.png"}
	return r, nil
}

func (b *Bot) handleAddMatch(ctx context.Context, in *invocation) (reply, error) {
	matchType := in.String("type")
	if matchType == "" {
		matchType = scheduledomain.MatchTypeRegularSeason
	}
	format := in.String("format")
	if format == "" {
		format = defaultMatchFormat
	}
	res, err := b.svc.Schedule.AddMatch(ctx, in.GuildID, scheduleservice.AddMatchRequest{
		MatchDay:    in.Int("match_day"),
		MatchDate:   in.String("date"),
		Home:        in.String("home"),
		Away:        in.String("away"),
		MatchType:   matchType,
		MatchFormat: format,
	})
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(m scheduledomain.ScheduledMatch) reply {
		return textReply("Scheduled " + matchLine(m, true))
	}), nil
}

func (b *Bot) handleImportSchedule(ctx context.Context, in *invocation) (reply, error) {
	a, ok := in.Attachment("file")
	if !ok {
		return textReply(":x: Attach a CSV or XLSX schedule."), nil
	}
	data, err := b.download(ctx, a)
	if err != nil {
		return userError(err, errAttachmentTooLarge)
	}
	res, err := b.svc.Schedule.ImportSchedule(ctx, in.GuildID, a.Filename, data)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(s scheduleservice.ImportSummary) reply {
		embed := &discordgo.MessageEmbed{
			Title:       "Schedule Import",
			Description: fmt.Sprintf("Added %d matches.", s.Added),
			Color:       colorSuccess,
		}
		if len(s.Errors) > 0 {
			embed.Color = colorInfo
			embed.Fields = []*discordgo.MessageEmbedField{{
				Name:  fmt.Sprintf("Skipped rows (%d)", len(s.Errors)),
				Value: listOrNone(s.Errors),
			}}
		}
		return reply{Embed: embed}
	}), nil
}

func (b *Bot) handleSetMatchDay(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Schedule.SetMatchDay(ctx, in.GuildID, in.Int("match_day"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(day int) reply {
		return textReply(fmt.Sprintf("Match day set to %d.", day))
	}), nil
}

func (b *Bot) handleRemoveMatch(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Schedule.RemoveMatch(ctx, in.GuildID, in.String("match_id"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(m scheduledomain.ScheduledMatch) reply {
		return textReply("Removed " + m.Title() + ".")
	}), nil
}

func (b *Bot) handleClearSchedule(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Schedule.ClearSchedule(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(n int) reply {
		return textReply(fmt.Sprintf("Removed %d matches.", n))
	}), nil
}
