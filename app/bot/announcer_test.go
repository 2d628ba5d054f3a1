package bot

import (
	"context"
	"testing"

	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/settingstest"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord/discordtest"
	"github.com/stretchr/testify/require"
)

func newAnnouncer() (*Announcer, *discordtest.FakeClient, *settingstest.Store) {
	dc := discordtest.NewFakeClient()
	store := settingstest.NewStore()
	return NewAnnouncer(dc, store, observability.NopLogger()), dc, store
}

var reportedMatch = scheduledomain.ScheduledMatch{
	ID:       "m1",
	Tier:     "Premier",
	MatchDay: 3,
	Home:     "Sharks",
	Away:     "Owls",
	Report: &scheduledomain.MatchReport{
		Winner:     "Sharks",
		HomeWins:   3,
		AwayWins:   1,
		Summary:    "**Sharks** 3 - 1 **Owls**",
		GroupLink:  "https://ballchasing.com/group/md3-abc",
		ReplayIDs:  []string{"r1", "r2", "r3", "r4"},
		ReportedBy: "u1",
	},
}

func TestAnnouncer_MatchReported(t *testing.T) {
	a, dc, store := newAnnouncer()
	store.MustSet("guild-1", settingsservice.KeyReplayDumpChannel, "c-replays")

	_, err := a.HandleMatchReported(context.Background(), &bcservice.MatchReportedPayload{GuildID: "guild-1", Match: reportedMatch})
	require.NoError(t, err)

	sent := dc.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "c-replays", sent[0].ChannelID)
	embed := sent[0].Message.Embed
	require.Equal(t, "Premier: Match Day 3", embed.Title)
	require.Equal(t, "**Sharks** 3 - 1 **Owls**", embed.Description)
	require.Equal(t, "https://ballchasing.com/group/md3-abc", embed.URL)
	require.Len(t, embed.Fields, 3)
	require.Equal(t, "4", embed.Fields[1].Value)
	require.Equal(t, "<@u1>", embed.Fields[2].Value)
}

func TestAnnouncer_NoChannel(t *testing.T) {
	a, dc, _ := newAnnouncer()
	ctx := context.Background()

	_, err := a.HandleMatchReported(ctx, &bcservice.MatchReportedPayload{GuildID: "guild-1", Match: reportedMatch})
	require.NoError(t, err)
	_, err = a.HandleMatchDayReportSkipped(ctx, &bcservice.MatchDayReportSkippedPayload{GuildID: "guild-1", MatchDay: 2, Reason: "no token"})
	require.NoError(t, err)
	require.Empty(t, dc.Sent())
}

func TestAnnouncer_LogChannel(t *testing.T) {
	a, dc, store := newAnnouncer()
	store.MustSet("guild-1", settingsservice.KeyLogChannel, "c-log")
	ctx := context.Background()

	failed := reportedMatch
	failed.Report = nil
	_, err := a.HandleMatchReportFailed(ctx, &bcservice.MatchReportFailedPayload{
		GuildID:     "guild-1",
		Match:       failed,
		Reason:      "incomplete set",
		GamesFound:  2,
		Summary:     "**Sharks** 1 - 1 **Owls**",
		Recoverable: true,
	})
	require.NoError(t, err)
	_, err = a.HandleMatchDayReportCompleted(ctx, &bcservice.MatchDayReportCompletedPayload{
		GuildID:  "guild-1",
		MatchDay: 3,
		Reported: []string{"Sharks vs Owls"},
	})
	require.NoError(t, err)
	_, err = a.HandleMatchDayReportSkipped(ctx, &bcservice.MatchDayReportSkippedPayload{GuildID: "guild-1", MatchDay: 4, Reason: "no auth token"})
	require.NoError(t, err)

	sent := dc.Sent()
	require.Len(t, sent, 3)
	for _, s := range sent {
		require.Equal(t, "c-log", s.ChannelID)
	}

	fail := sent[0].Message.Embed
	require.Equal(t, "Could not report Sharks vs Owls", fail.Title)
	require.Equal(t, colorFailed, fail.Color)
	require.Equal(t, "2", fail.Fields[1].Value)
	require.NotNil(t, fail.Footer)

	done := sent[1].Message.Embed
	require.Equal(t, "Match Day 3 Reporting Finished", done.Title)
	require.Equal(t, colorReported, done.Color)
	require.Equal(t, "Sharks vs Owls", done.Fields[0].Value)
	require.Equal(t, "None", done.Fields[1].Value)

	require.Equal(t, "no auth token", sent[2].Message.Embed.Description)
}
