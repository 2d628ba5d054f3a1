package bcservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/settingstest"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord/discordtest"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	guildID = "guild-1"
	home    = "Thermal Gorillas"
	away    = "Peppermint"
)

var (
	fixedNow = time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	// 9:10pm New York on March 4.
	kickoff = time.Date(2026, time.March, 5, 2, 10, 0, 0, time.UTC)
)

type harness struct {
	svc      *BallchasingService
	api      *FakeAPI
	store    *settingstest.Store
	league   *FakeLeague
	matches  *FakeMatches
	accounts *FakeAccounts
	discord  *discordtest.FakeClient
	bus      *FakeBus
}

func member(id string) discord.Member { return discord.Member{ID: id, Username: id} }

func epic(id string) []bcdomain.Account {
	return []bcdomain.Account{{Platform: bcdomain.PlatformEpic, ID: id}}
}

func testMatch(id, format string) scheduledomain.ScheduledMatch {
	return scheduledomain.ScheduledMatch{
		ID:          id,
		Tier:        "Premier",
		MatchDay:    3,
		MatchDate:   "March 4, 2026",
		Home:        home,
		Away:        away,
		MatchFormat: scheduledomain.MustParseMatchFormat(format),
	}
}

func newHarness(t *testing.T, matches ...scheduledomain.ScheduledMatch) *harness {
	t.Helper()
	h := &harness{
		api:   NewFakeAPI(),
		store: settingstest.NewStore(),
		league: &FakeLeague{
			Teams: []leagueservice.Team{
				{Name: home, Tier: "Premier"},
				{Name: away, Tier: "Premier"},
			},
			Rosters: map[string][]discord.Member{
				home: {member("h1"), member("h2"), member("h3")},
				away: {member("a1"), member("a2"), member("a3")},
			},
			Captains: map[string]string{home: "h2", away: "a2"},
			Ranks:    map[string]int{"Premier": 1},
		},
		matches: &FakeMatches{Day: 3, Matches: matches},
		accounts: &FakeAccounts{
			ByMember: map[string][]bcdomain.Account{},
			Errs:     map[string]error{},
		},
		discord: discordtest.NewFakeClient(),
		bus:     NewFakeBus(),
	}
	for _, id := range []string{"h1", "h2", "h3", "a1", "a2", "a3"} {
		h.accounts.ByMember[id] = epic(id)
	}
	h.store.MustSet(guildID, settingsservice.KeyAuthToken, "token")
	h.store.MustSet(guildID, settingsservice.KeyTopLevelGroup, "top")

	registry := NewRegistry(h.store, func(string) API { return h.api })
	h.svc = NewBallchasingService(
		h.store,
		registry,
		h.league,
		h.matches,
		h.accounts,
		h.discord,
		observability.NopLogger(),
		observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		WithClock(func() time.Time { return fixedNow }),
		WithEventBus(h.bus),
	)
	return h
}

// game is the n-th game of the series; homeWon picks the winner.
func game(n int, homeWon bool) bcdomain.Replay {
	blue, orange := 1, 0
	if !homeWon {
		blue, orange = 0, 1
	}
	date := kickoff.Add(time.Duration(n) * 15 * time.Minute)
	return bcdomain.Replay{
		ID:       fmt.Sprintf("g%d", n),
		Created:  date.Add(10 * time.Minute),
		Date:     date,
		Duration: 312,
		MapCode:  "stadium_p",
		Blue: bcdomain.Side{Name: home, Goals: blue, Players: []bcdomain.Player{
			{Name: "h1"}, {Name: "h2"}, {Name: "h3"},
		}},
		Orange: bcdomain.Side{Name: away, Goals: orange, Players: []bcdomain.Player{
			{Name: "a1"}, {Name: "a2"}, {Name: "a3"},
		}},
	}
}

func TestMatchPlayers_Order(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		invoker string
		want    []string
	}{
		{name: "captains first", invoker: "", want: []string{"h2", "a2", "h1", "h3", "a1", "a3"}},
		{name: "invoker first", invoker: "a3", want: []string{"a3", "h2", "a2", "h1", "h3", "a1"}},
		{name: "captain invoker", invoker: "a2", want: []string{"a2", "h2", "h1", "h3", "a1", "a3"}},
		{name: "outsider invoker", invoker: "x9", want: []string{"h2", "a2", "h1", "h3", "a1", "a3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members, err := h.svc.MatchPlayers(ctx, guildID, testMatch("m1", "4-GS"), tt.invoker)
			require.NoError(t, err)
			var ids []string
			for _, m := range members {
				ids = append(ids, m.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestFindMatchReplays_Exhausted(t *testing.T) {
	h := newHarness(t)
	h.api.Results["epic:h1"] = []bcdomain.Replay{game(0, true)}

	state, err := h.svc.FindMatchReplays(context.Background(), guildID, testMatch("m1", "4-GS"), "a3")
	require.NoError(t, err)

	require.False(t, state.IsValidSet)
	require.Equal(t, 1, state.GamesFound())
	require.Len(t, state.PlayersSearched, 6)
	require.Equal(t, []string{"epic:a3", "epic:h2", "epic:a2", "epic:h1", "epic:h3", "epic:a1"}, h.api.Searched())
}

func TestFindMatchReplays_BestOfStopsEarly(t *testing.T) {
	h := newHarness(t)
	h.api.Results["epic:h2"] = []bcdomain.Replay{game(0, true), game(1, false)}
	// a2 uploaded game 1 again alongside the deciding games.
	h.api.Results["epic:a2"] = []bcdomain.Replay{game(1, false), game(2, true), game(3, true), game(4, false)}

	state, err := h.svc.FindMatchReplays(context.Background(), guildID, testMatch("m1", "BO-5"), "")
	require.NoError(t, err)

	require.True(t, state.IsValidSet)
	require.Equal(t, 3, state.HomeWins)
	require.Equal(t, 1, state.AwayWins)
	require.Equal(t, home, state.Winner)
	require.Equal(t, []string{"g0", "g1", "g2", "g3"}, state.MatchReplayIDs)
	require.Equal(t, []string{"epic:h2", "epic:a2"}, h.api.Searched())
}

func TestFindMatchReplays_Accounts(t *testing.T) {
	h := newHarness(t)
	// h3 plays on h1's account and a1's lookup is down.
	h.accounts.ByMember["h3"] = epic("h1")
	h.accounts.ByMember["a1"] = nil
	h.accounts.Errs["a1"] = errors.New("lookup unavailable")

	state, err := h.svc.FindMatchReplays(context.Background(), guildID, testMatch("m1", "4-GS"), "")
	require.NoError(t, err)

	require.Equal(t, []string{"epic:h2", "epic:a2", "epic:h1", "epic:a3"}, h.api.Searched())
	require.Len(t, state.AccountsSearched, 4)
	require.Len(t, state.PlayersSearched, 6)
}

func TestFindMatchReplays_SearchError(t *testing.T) {
	h := newHarness(t)
	h.api.SearchErrs["epic:a2"] = &bcclient.APIError{StatusCode: http.StatusInternalServerError}

	_, err := h.svc.FindMatchReplays(context.Background(), guildID, testMatch("m1", "4-GS"), "")
	require.Error(t, err)
	require.True(t, bcclient.IsStatus(err, http.StatusInternalServerError))
}

func TestReportMatch_Success(t *testing.T) {
	h := newHarness(t, testMatch("m1", "4-GS"))
	h.api.Results["epic:h1"] = []bcdomain.Replay{game(0, true), game(1, false), game(2, true), game(3, true)}
	h.api.Duplicates["g1"] = true

	res, err := h.svc.ReportMatch(context.Background(), guildID, ReportRequest{InvokerID: "h1", ChannelID: "chan-1"})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "failure: %+v", res.Failure)

	out := res.Success
	require.Equal(t, home, out.Match.Report.Winner)
	require.Equal(t, 3, out.Match.Report.HomeWins)
	require.Equal(t, 1, out.Match.Report.AwayWins)
	require.Equal(t, "h1", out.Match.Report.ReportedBy)
	require.Equal(t, fixedNow, out.Match.Report.ReportedAt)
	require.Equal(t, []string{"epic:h1"}, h.api.Searched())

	groupID := "top/1premier/match-day-03/thermal-gorillas-vs-peppermint"
	require.Equal(t, groupID, out.Match.Report.GroupID)
	require.Equal(t, bcclient.GroupLink(groupID), out.Match.Report.GroupLink)
	require.Equal(t, []string{"1Premier", "Match Day 03", "Thermal Gorillas vs Peppermint"}, h.api.Created())
	require.Equal(t, []string{"g0.replay", "g1.replay", "g2.replay", "g3.replay"}, h.api.Uploaded())
	require.Equal(t, []string{"g1->" + groupID}, h.api.Patched())

	stored, err := h.matches.MatchByID(context.Background(), guildID, "m1")
	require.NoError(t, err)
	require.True(t, stored.Reported())

	require.Len(t, h.bus.Messages(eventbus.MatchReportedV1), 1)
	payload, err := eventbus.Decode[MatchReportedPayload](h.bus.Messages(eventbus.MatchReportedV1)[0])
	require.NoError(t, err)
	require.Equal(t, "m1", payload.Match.ID)

	sent := h.discord.Sent()
	require.Len(t, sent, 1)
	embed := sent[0].Message.Embed
	require.Equal(t, "Match Day 3: Thermal Gorillas vs Peppermint", embed.Title)
	require.Contains(t, embed.Description, "View the ballchasing group: "+bcclient.GroupLink(groupID))
	require.Equal(t, []string{"Send", "Edit", "Edit"}, h.discord.Trace())
}

func TestReportMatch_Failures(t *testing.T) {
	reported := testMatch("m2", "4-GS")
	reported.Report = &scheduledomain.MatchReport{Winner: home}

	tests := []struct {
		name    string
		setup   func(h *harness)
		req     ReportRequest
		wantErr error
	}{
		{
			name:    "no auth token",
			setup:   func(h *harness) { h.store.MustSet(guildID, settingsservice.KeyAuthToken, nil) },
			req:     ReportRequest{InvokerID: "h1"},
			wantErr: ErrNoAuthToken,
		},
		{
			name:    "no top level group",
			setup:   func(h *harness) { h.store.MustSet(guildID, settingsservice.KeyTopLevelGroup, nil) },
			req:     ReportRequest{InvokerID: "h1"},
			wantErr: ErrNoTopLevelGroup,
		},
		{
			name:    "invoker not on a team",
			req:     ReportRequest{InvokerID: "x9"},
			wantErr: leagueservice.ErrNoTeamForMember,
		},
		{
			name:    "unknown match",
			req:     ReportRequest{MatchID: "nope"},
			wantErr: scheduleservice.ErrMatchNotFound,
		},
		{
			name:    "already reported",
			req:     ReportRequest{MatchID: "m2"},
			wantErr: ErrAlreadyReported,
		},
		{
			name:    "nothing uploaded",
			req:     ReportRequest{InvokerID: "h1"},
			wantErr: ErrNoReplaysFound,
		},
		{
			name: "incomplete series",
			setup: func(h *harness) {
				h.api.Results["epic:a1"] = []bcdomain.Replay{game(0, true), game(1, true)}
			},
			req:     ReportRequest{InvokerID: "h1"},
			wantErr: ErrIncompleteSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testMatch("m1", "4-GS"), reported)
			if tt.setup != nil {
				tt.setup(h)
			}
			res, err := h.svc.ReportMatch(context.Background(), guildID, tt.req)
			require.NoError(t, err)
			require.True(t, res.IsFailure())
			require.ErrorIs(t, res.Failure.Err, tt.wantErr)
			require.Empty(t, h.api.Uploaded())
			require.Empty(t, h.bus.Messages(eventbus.MatchReportedV1))
		})
	}
}

func TestReportMatch_StatusShowsFailure(t *testing.T) {
	h := newHarness(t, testMatch("m1", "4-GS"))
	h.api.Results["epic:h1"] = []bcdomain.Replay{game(0, true)}

	res, err := h.svc.ReportMatch(context.Background(), guildID, ReportRequest{InvokerID: "h1", ChannelID: "chan-1"})
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	require.Equal(t, 1, res.Failure.State.GamesFound)

	sent := h.discord.Sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Message.Embed.Description, ":x: ")
}

func TestReportMatches(t *testing.T) {
	second := testMatch("m2", "4-GS")
	second.Home, second.Away = "Owls", "Sharks"
	h := newHarness(t, testMatch("m1", "4-GS"), second)
	h.league.Teams = append(h.league.Teams,
		leagueservice.Team{Name: "Owls", Tier: "Premier"},
		leagueservice.Team{Name: "Sharks", Tier: "Premier"},
	)
	h.api.Results["epic:h2"] = []bcdomain.Replay{game(0, false), game(1, false), game(2, false), game(3, true)}

	res, err := h.svc.ReportMatches(context.Background(), guildID, 0, "")
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	out := res.Success
	require.Equal(t, 3, out.MatchDay)
	require.Len(t, out.Reported, 1)
	require.Equal(t, away, out.Reported[0].Report.Winner)
	require.Len(t, out.Failed, 1)
	require.Equal(t, "m2", out.Failed[0].Match.ID)
	require.True(t, out.Failed[0].Recoverable)

	require.Len(t, h.bus.Messages(eventbus.MatchReportedV1), 1)
	require.Len(t, h.bus.Messages(eventbus.MatchReportFailedV1), 1)
	completed, err := eventbus.Decode[MatchDayReportCompletedPayload](h.bus.Messages(eventbus.MatchDayReportCompletedV1)[0])
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, completed.Reported)
	require.Equal(t, []string{"m2"}, completed.Failed)
	require.Empty(t, h.discord.Sent())
}

func TestSetAuthToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token clears the top level group", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.registry.Client(ctx, guildID)
		require.NoError(t, err)

		res, err := h.svc.SetAuthToken(ctx, guildID, "  fresh  ")
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		require.True(t, res.Success.ClearedTopLevelGroup)
		require.Equal(t, h.api.Identity, res.Success.Identity)

		token, err := settingsservice.GetString(ctx, h.store, guildID, settingsservice.KeyAuthToken)
		require.NoError(t, err)
		require.Equal(t, "fresh", *token)
		group, err := settingsservice.GetString(ctx, h.store, guildID, settingsservice.KeyTopLevelGroup)
		require.NoError(t, err)
		require.Nil(t, group)
		require.Equal(t, 0, h.svc.registry.Len())
	})

	t.Run("rejected token is not stored", func(t *testing.T) {
		h := newHarness(t)
		h.api.PingErr = &bcclient.APIError{StatusCode: http.StatusUnauthorized}

		res, err := h.svc.SetAuthToken(ctx, guildID, "bad")
		require.NoError(t, err)
		require.True(t, res.IsFailure())
		require.ErrorIs(t, res.Failure.Err, ErrInvalidAuthToken)

		token, err := settingsservice.GetString(ctx, h.store, guildID, settingsservice.KeyAuthToken)
		require.NoError(t, err)
		require.Equal(t, "token", *token)
	})

	t.Run("outage is an error", func(t *testing.T) {
		h := newHarness(t)
		h.api.PingErr = &bcclient.APIError{StatusCode: http.StatusBadGateway}

		_, err := h.svc.SetAuthToken(ctx, guildID, "fresh")
		require.Error(t, err)
	})
}

func TestSetTopLevelGroup(t *testing.T) {
	ctx := context.Background()
	owned := bcclient.Group{ID: "league-s18-abc123", Creator: bcclient.Creator{SteamID: "76561198000000001"}}
	foreign := bcclient.Group{ID: "other-xyz", Creator: bcclient.Creator{SteamID: "76561198000000002"}}

	tests := []struct {
		name      string
		input     string
		wantGroup string
		wantErr   error
	}{
		{name: "link", input: "https://ballchasing.com/group/league-s18-abc123", wantGroup: "league-s18-abc123"},
		{name: "bare id", input: "league-s18-abc123", wantGroup: "league-s18-abc123"},
		{name: "someone else's group", input: "other-xyz", wantErr: ErrGroupOwnerMismatch},
		{name: "missing group", input: "ghost", wantErr: ErrGroupNotFound},
		{name: "empty", input: " ", wantErr: ErrGroupNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.api.Groups[owned.ID] = owned
			h.api.Groups[foreign.ID] = foreign

			res, err := h.svc.SetTopLevelGroup(ctx, guildID, tt.input)
			require.NoError(t, err)

			stored, err := settingsservice.GetString(ctx, h.store, guildID, settingsservice.KeyTopLevelGroup)
			require.NoError(t, err)
			if tt.wantErr != nil {
				require.True(t, res.IsFailure())
				require.ErrorIs(t, res.Failure.Err, tt.wantErr)
				require.Equal(t, "top", *stored)
				return
			}
			require.True(t, res.IsSuccess())
			require.Equal(t, tt.wantGroup, *stored)
			require.Equal(t, bcclient.GroupLink(tt.wantGroup), res.Success.Link)

			link, err := h.svc.TopLevelGroupLink(ctx, guildID)
			require.NoError(t, err)
			require.Equal(t, bcclient.GroupLink(tt.wantGroup), *link.Success)
		})
	}
}

func TestTopLevelGroupLink_Unset(t *testing.T) {
	h := newHarness(t)
	h.store.MustSet(guildID, settingsservice.KeyTopLevelGroup, nil)

	res, err := h.svc.TopLevelGroupLink(context.Background(), guildID)
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	require.ErrorIs(t, res.Failure.Err, ErrNoTopLevelGroup)
}
