package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	bcaccounts "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/accounts"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleReport(ctx context.Context, in *invocation) (reply, error) {
	req := bcservice.ReportRequest{InvokerID: in.UserID, ChannelID: in.ChannelID}

	if team := in.String("team"); team != "" || in.Has("match_day") {
		if team == "" {
			t, _, err := b.svc.League.TeamForUser(ctx, in.GuildID, in.UserID)
			if err != nil {
				return userError(err, leagueservice.ErrNoTeamForMember)
			}
			team = t.Name
		}
		day := in.Int("match_day")
		if day == 0 {
			var err error
			if day, err = b.svc.Schedule.MatchDay(ctx, in.GuildID); err != nil {
				return reply{}, err
			}
		}
		match, err := b.svc.Schedule.TeamMatch(ctx, in.GuildID, team, day)
		if err != nil {
			if errors.Is(err, scheduleservice.ErrMatchNotFound) {
				return errorReply(err), nil
			}
			return reply{}, err
		}
		req.MatchID = match.ID
	}

	res, err := b.svc.Ballchasing.ReportMatch(ctx, in.GuildID, req)
	if err != nil {
		return reply{}, err
	}
	if f := res.Failure; f != nil && f.State != nil && f.State.GamesFound > 0 {
		r := errorReply(*f)
		r.Content += fmt.Sprintf("\nFound %d game(s) so far: %s", f.State.GamesFound, f.State.Summary)
		return r, nil
	}
	return resultReply(res, func(o bcservice.ReportOutcome) reply {
		msg := "Reported " + o.Match.Title()
		if o.Match.Report != nil {
			msg += ": " + o.Match.Report.Summary
			if o.Match.Report.GroupLink != "" {
				msg += "\n" + o.Match.Report.GroupLink
			}
		}
		return textReply(msg)
	}), nil
}

func (b *Bot) handleReportAll(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Ballchasing.ReportMatches(ctx, in.GuildID, in.Int("match_day"), in.UserID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, matchDayReportReply), nil
}

func matchDayReportReply(r bcservice.MatchDayReport) reply {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Match Day %d Report", r.MatchDay),
		Color: colorInfo,
	}
	var reported []string
	for _, m := range r.Reported {
		line := m.Title()
		if m.Report != nil {
			line = m.Report.Summary
			if m.Report.GroupLink != "" {
				line += " ([group](" + m.Report.GroupLink + "))"
			}
		}
		reported = append(reported, line)
	}
	var failed []string
	for _, f := range r.Failed {
		failed = append(failed, fmt.Sprintf("%s: %s", f.Match.Title(), f.Reason))
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: fmt.Sprintf("Reported (%d)", len(reported)), Value: listOrNone(reported)},
		{Name: fmt.Sprintf("Not reported (%d)", len(failed)), Value: listOrNone(failed)},
	}
	return reply{Embed: embed}
}

func (b *Bot) handleGroupLink(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Ballchasing.TopLevelGroupLink(ctx, in.GuildID)
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(link string) reply {
		return textReply("Replays for this league are grouped at " + link)
	}), nil
}

func (b *Bot) handleSetAuthToken(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Ballchasing.SetAuthToken(ctx, in.GuildID, in.String("token"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(o bcservice.AuthTokenOutcome) reply {
		msg := "Auth token set. Uploads will be made as " + o.Identity.Name + "."
		if o.ClearedTopLevelGroup {
			msg += " The top level group was cleared and must be set again."
		}
		return textReply(msg)
	}), nil
}

func (b *Bot) handleSetTopLevelGroup(ctx context.Context, in *invocation) (reply, error) {
	res, err := b.svc.Ballchasing.SetTopLevelGroup(ctx, in.GuildID, in.String("group"))
	if err != nil {
		return reply{}, err
	}
	return resultReply(res, func(g bcclient.Group) reply {
		return textReply(fmt.Sprintf("Top level group set to %s (%s)", g.Name, g.Link))
	}), nil
}

func (b *Bot) handleSetReplayChannel(ctx context.Context, in *invocation) (reply, error) {
	return b.setOptionalID(ctx, in, settingsservice.KeyReplayDumpChannel, "channel", "Replay channel", discord.ChannelMention)
}

func (b *Bot) handleSetStatsRole(ctx context.Context, in *invocation) (reply, error) {
	return b.setOptionalID(ctx, in, settingsservice.KeyStatsManagerRole, "role", "Stats manager role", discord.RoleMention)
}

func (b *Bot) handleListAccounts(ctx context.Context, in *invocation) (reply, error) {
	userID := in.UserID
	if in.Has("member") {
		userID = in.ID("member")
	}
	accounts, err := b.svc.Accounts.Accounts(ctx, in.GuildID, userID)
	if err != nil {
		return reply{}, err
	}
	return accountsReply(userID, accounts), nil
}

func (b *Bot) handleRegisterAccount(ctx context.Context, in *invocation) (reply, error) {
	accounts, err := b.svc.Accounts.Register(ctx, in.GuildID, in.UserID, bcdomain.Account{
		Platform: in.String("platform"),
		ID:       in.String("id"),
	})
	if err != nil {
		return userError(err, bcaccounts.ErrInvalidAccount, bcaccounts.ErrUnknownPlatform)
	}
	return accountsReply(in.UserID, accounts), nil
}

func (b *Bot) handleUnregisterAccount(ctx context.Context, in *invocation) (reply, error) {
	accounts, err := b.svc.Accounts.Unregister(ctx, in.GuildID, in.UserID, bcdomain.Account{
		Platform: in.String("platform"),
		ID:       in.String("id"),
	})
	if err != nil {
		return reply{}, err
	}
	return accountsReply(in.UserID, accounts), nil
}

func accountsReply(userID string, accounts []bcdomain.Account) reply {
	if len(accounts) == 0 {
		return textReply(discord.UserMention(userID) + " has no registered accounts.")
	}
	lines := make([]string, 0, len(accounts))
	for _, a := range accounts {
		lines = append(lines, fmt.Sprintf("`%s` %s", a.Platform, a.ID))
	}
	return textReply(discord.UserMention(userID) + " accounts:\n" + strings.Join(lines, "\n"))
}
