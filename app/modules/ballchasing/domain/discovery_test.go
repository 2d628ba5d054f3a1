package bcdomain

import (
	"fmt"
	"testing"
	"time"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/stretchr/testify/require"
)

func match(format string) scheduledomain.ScheduledMatch {
	return scheduledomain.ScheduledMatch{
		ID:          "m1",
		Tier:        "Premier",
		MatchDay:    3,
		MatchDate:   "March 4, 2026",
		Home:        "Thermal Gorillas",
		Away:        "Peppermint",
		MatchFormat: scheduledomain.MustParseMatchFormat(format),
	}
}

// game builds the n-th distinct game of a series; homeWon picks the winner.
func game(n int, homeWon bool) Replay {
	r := newReplay(fmt.Sprintf("r%d", n), "gorillas", 1, "Peppermint FC", 0)
	if !homeWon {
		r.Blue.Goals, r.Orange.Goals = 0, 1
	}
	r.Date = kickoff.Add(time.Duration(n) * 15 * time.Minute)
	r.Created = r.Date.Add(10 * time.Minute)
	return r
}

func requireInvariants(t *testing.T, s *DiscoveryState) {
	t.Helper()
	require.Len(t, s.ReplayHashes, len(s.MatchReplayIDs))
	require.Equal(t, len(s.MatchReplayIDs), s.HomeWins+s.AwayWins)
}

func TestDiscoveryState_GameSeries(t *testing.T) {
	tests := []struct {
		name       string
		homeWins   []bool
		wantValid  []bool
		wantWinner string
	}{
		{name: "4-0", homeWins: []bool{true, true, true, true}, wantValid: []bool{false, false, false, true}, wantWinner: "Thermal Gorillas"},
		{name: "3-1", homeWins: []bool{false, true, true, true}, wantValid: []bool{false, false, false, true}, wantWinner: "Thermal Gorillas"},
		{name: "2-2", homeWins: []bool{true, false, true, false}, wantValid: []bool{false, false, false, true}, wantWinner: ""},
		{name: "1-3", homeWins: []bool{false, false, true, false}, wantValid: []bool{false, false, false, true}, wantWinner: "Peppermint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDiscoveryState(match("4-GS"))
			for i, homeWon := range tt.homeWins {
				require.Equal(t, Counted, s.Record(game(i, homeWon)))
				require.Equal(t, tt.wantValid[i], s.IsValidSet, "after game %d", i+1)
				requireInvariants(t, s)
			}
			require.Equal(t, tt.wantWinner, s.Winner)
			require.Equal(t, AlreadySettled, s.Record(game(99, true)))
			require.Equal(t, 4, s.GamesFound())
		})
	}
}

func TestDiscoveryState_BestOfShortCircuits(t *testing.T) {
	s := NewDiscoveryState(match("5-BO"))

	for i, homeWon := range []bool{true, false, true} {
		require.Equal(t, Counted, s.Record(game(i, homeWon)))
		require.False(t, s.IsValidSet)
	}
	require.Equal(t, Counted, s.Record(game(3, true)))
	require.True(t, s.IsValidSet)
	require.Equal(t, 3, s.HomeWins)
	require.Equal(t, 1, s.AwayWins)
	require.Equal(t, "Thermal Gorillas", s.Winner)
	require.Equal(t, "**Thermal Gorillas** 3 - 1 **Peppermint**", s.Summary())

	require.Equal(t, AlreadySettled, s.Record(game(4, false)))
	require.Equal(t, 4, s.GamesFound())
	requireInvariants(t, s)
}

func TestDiscoveryState_Duplicates(t *testing.T) {
	s := NewDiscoveryState(match("4-GS"))

	first := game(0, true)
	require.Equal(t, Counted, s.Record(first))

	reupload := first
	reupload.ID = "uploaded-by-teammate"
	reupload.Created = first.Created.Add(2 * time.Hour)
	require.Equal(t, Duplicate, s.Record(reupload))
	require.Equal(t, Duplicate, s.Record(first))

	require.Equal(t, []string{first.ID}, s.MatchReplayIDs)
	require.Equal(t, 1, s.HomeWins)
	requireInvariants(t, s)
}

func TestDiscoveryState_Rejections(t *testing.T) {
	s := NewDiscoveryState(match("3-BO"))

	tied := game(0, true)
	tied.Orange.Goals = tied.Blue.Goals
	require.Equal(t, NotMatch, s.Record(tied))

	strangers := game(1, true)
	strangers.Blue.Name, strangers.Orange.Name = "Random A", "Random B"
	require.Equal(t, NotMatch, s.Record(strangers))

	ambiguous := game(2, true)
	ambiguous.Blue.Name, ambiguous.Orange.Name = "Thermal Gorillas vs Peppermint", "Peppermint vs Thermal Gorillas"
	require.Equal(t, SidesAmbiguous, s.Record(ambiguous))

	require.Empty(t, s.MatchReplayIDs)
	require.Zero(t, s.HomeWins+s.AwayWins)
	require.False(t, s.IsValidSet)
	requireInvariants(t, s)
}

func TestDiscoveryState_Report(t *testing.T) {
	s := NewDiscoveryState(match("3-BO"))
	s.Record(game(0, false))
	s.Record(game(1, false))
	s.SearchedAccount("76561198000000001")
	s.SearchedPlayer("100")

	at := time.Date(2026, 3, 5, 5, 0, 0, 0, time.UTC)
	report := s.Report("grp-1", "https://ballchasing.com/group/grp-1", "200", at)

	require.True(t, s.IsValidSet)
	require.Equal(t, "Peppermint", report.Winner)
	require.Equal(t, 0, report.HomeWins)
	require.Equal(t, 2, report.AwayWins)
	require.Equal(t, []string{"r0", "r1"}, report.ReplayIDs)
	require.Equal(t, at, report.ReportedAt)
	require.Equal(t, game(1, false).Created, s.LatestReplay)
	require.Equal(t, []string{"76561198000000001"}, s.AccountsSearched)
	require.Equal(t, []string{"100"}, s.PlayersSearched)
}

func TestDiscoveryState_NestedTeamNames(t *testing.T) {
	m := match("1-GS")
	m.Home, m.Away = "Knights", "Dark Knights"
	s := NewDiscoveryState(m)

	require.Equal(t, Counted, s.Record(newReplay("r1", "Knights", 3, "Dark Knights", 1)))
	require.True(t, s.IsValidSet)
	require.Equal(t, 1, s.HomeWins)
	require.Equal(t, "Knights", s.Winner)
	requireInvariants(t, s)
}
