package scheduleservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/settingstest"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/elliotchance/pie/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const guildID = "guild-1"

var testTeams = []leagueservice.Team{
	{Name: "Sharks", Tier: "Premier"},
	{Name: "Owls", Tier: "Premier"},
	{Name: "Foxes", Tier: "Premier"},
	{Name: "Bears", Tier: "Master"},
}

// Wednesday noon in New York.
var fixedNow = time.Date(2024, time.March, 6, 17, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*ScheduleService, *FakeReportScheduler, *settingstest.Store) {
	t.Helper()
	store := settingstest.NewStore()
	sched := &FakeReportScheduler{}
	svc := NewScheduleService(
		store,
		&FakeTeamDirectory{Teams: testTeams},
		observability.NopLogger(),
		observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		WithClock(func() time.Time { return fixedNow }),
		WithLobbySeed(7),
		WithReportScheduler(sched),
	)
	return svc, sched, store
}

func addMatch(t *testing.T, s *ScheduleService, day int, date, home, away, format string) scheduledomain.ScheduledMatch {
	t.Helper()
	res, err := s.AddMatch(context.Background(), guildID, AddMatchRequest{
		MatchDay: day, MatchDate: date, Home: home, Away: away, MatchFormat: format,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "AddMatch failure: %+v", res.Failure)
	return *res.Success
}

func TestAddMatch_Success(t *testing.T) {
	s, sched, _ := newTestService(t)

	m := addMatch(t, s, 1, "March 7, 2024", "sharks", "OWLS", "BO-5")

	require.NotEmpty(t, m.ID)
	require.Equal(t, "Premier", m.Tier)
	require.Equal(t, "Sharks", m.Home)
	require.Equal(t, "Owls", m.Away)
	require.Equal(t, "March 7, 2024", m.MatchDate)
	require.Equal(t, scheduledomain.MatchTypeRegularSeason, m.MatchType)
	require.Equal(t, scheduledomain.MatchFormat{Type: scheduledomain.BestOf, Games: 5}, m.MatchFormat)
	require.NotEmpty(t, m.RoomName)
	require.NotEmpty(t, m.RoomPass)

	calls := sched.Calls()
	require.Len(t, calls, 1)
	ny, _ := time.LoadLocation("America/New_York")
	require.Equal(t, time.Date(2024, time.March, 8, 0, 59, 59, 0, ny), calls[0].At.In(ny))
	require.Equal(t, 1, calls[0].MatchDay)

	stored, err := s.MatchByID(context.Background(), guildID, m.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(m, stored); diff != "" {
		t.Errorf("stored match (-want +got):\n%s", diff)
	}
}

func TestAddMatch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		req     AddMatchRequest
		wantErr error
	}{
		{
			name:    "non-positive match day",
			req:     AddMatchRequest{MatchDay: 0, MatchDate: "March 7, 2024", Home: "Sharks", Away: "Owls", MatchFormat: "4-GS"},
			wantErr: ErrInvalidMatchDay,
		},
		{
			name:    "bad format",
			req:     AddMatchRequest{MatchDay: 1, MatchDate: "March 7, 2024", Home: "Sharks", Away: "Owls", MatchFormat: "BO-4"},
			wantErr: scheduledomain.ErrInvalidMatchFormat,
		},
		{
			name:    "bad date",
			req:     AddMatchRequest{MatchDay: 1, MatchDate: "whenever works", Home: "Sharks", Away: "Owls", MatchFormat: "4-GS"},
			wantErr: ErrInvalidMatchDate,
		},
		{
			name:    "same team",
			req:     AddMatchRequest{MatchDay: 1, MatchDate: "March 7, 2024", Home: "Sharks", Away: "sharks", MatchFormat: "4-GS"},
			wantErr: ErrSameTeam,
		},
		{
			name:    "unknown team",
			req:     AddMatchRequest{MatchDay: 1, MatchDate: "March 7, 2024", Home: "Sharks", Away: "Ghosts", MatchFormat: "4-GS"},
			wantErr: leagueservice.ErrTeamNotFound,
		},
		{
			name:    "cross tier",
			req:     AddMatchRequest{MatchDay: 1, MatchDate: "March 7, 2024", Home: "Sharks", Away: "Bears", MatchFormat: "4-GS"},
			wantErr: ErrTierMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sched, _ := newTestService(t)
			res, err := s.AddMatch(context.Background(), guildID, tt.req)
			require.NoError(t, err)
			require.True(t, res.IsFailure())
			require.ErrorIs(t, res.Failure.Err, tt.wantErr)
			require.Empty(t, sched.Calls())

			all, err := s.Matches(context.Background(), guildID)
			require.NoError(t, err)
			require.Empty(t, all)
		})
	}
}

func TestAddMatch_DirectoryError(t *testing.T) {
	s, _, _ := newTestService(t)
	s.teams = &FakeTeamDirectory{Err: errors.New("discord unavailable")}
	_, err := s.AddMatch(context.Background(), guildID, AddMatchRequest{
		MatchDay: 1, MatchDate: "March 7, 2024", Home: "Sharks", Away: "Owls", MatchFormat: "4-GS",
	})
	require.Error(t, err)
}

func TestParseMatchDate(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	tests := []struct {
		in   string
		want string
	}{
		{in: "March 7, 2024", want: "March 7, 2024"},
		{in: "2024-03-12", want: "March 12, 2024"},
		{in: "tomorrow", want: "March 7, 2024"},
	}
	for _, tt := range tests {
		got, err := ParseMatchDate(tt.in, ny, fixedNow)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, FormatMatchDate(got), tt.in)
		require.Equal(t, 0, got.Hour())
	}
}

func TestAddMatch_UniqueLobbiesPerDay(t *testing.T) {
	s, _, store := newTestService(t)

	var names []string
	for i := 0; i < 6; i++ {
		m := addMatch(t, s, 2, "March 14, 2024", "Sharks", "Owls", "4-GS")
		names = append(names, m.RoomName)
	}
	require.Len(t, pie.Unique(names), len(names))

	lobbies, err := settingsservice.Get(context.Background(), store, guildID, settingsservice.KeyLobbyHashes, map[int][]string{})
	require.NoError(t, err)
	require.ElementsMatch(t, names, lobbies[2])
}

func TestQueriesAndReports(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t)

	m1 := addMatch(t, s, 1, "March 7, 2024", "Sharks", "Owls", "BO-5")
	m2 := addMatch(t, s, 1, "March 7, 2024", "Foxes", "Sharks", "4-GS")
	m3 := addMatch(t, s, 2, "March 14, 2024", "Owls", "Foxes", "BO-5")

	day, err := s.MatchDay(ctx, guildID)
	require.NoError(t, err)
	require.Equal(t, 0, day)
	res, err := s.SetMatchDay(ctx, guildID, 1)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	res, err = s.SetMatchDay(ctx, guildID, -1)
	require.NoError(t, err)
	require.ErrorIs(t, res.Failure.Err, ErrInvalidMatchDay)

	got, err := s.TeamMatch(ctx, guildID, "sharks", 1)
	require.NoError(t, err)
	require.Contains(t, []string{m1.ID, m2.ID}, got.ID)
	_, err = s.TeamMatch(ctx, guildID, "Sharks", 2)
	require.ErrorIs(t, err, ErrMatchNotFound)

	dayOne, err := s.MatchesForDay(ctx, guildID, 1)
	require.NoError(t, err)
	require.Len(t, dayOne, 2)

	_, err = s.AttachReport(ctx, guildID, m1.ID, scheduledomain.MatchReport{Winner: "Sharks", HomeWins: 3, AwayWins: 1})
	require.NoError(t, err)
	_, err = s.AttachReport(ctx, guildID, m2.ID, scheduledomain.MatchReport{Winner: "", HomeWins: 2, AwayWins: 2})
	require.NoError(t, err)
	_, err = s.AttachReport(ctx, guildID, "missing", scheduledomain.MatchReport{})
	require.ErrorIs(t, err, ErrMatchNotFound)

	unreported, err := s.UnreportedMatches(ctx, guildID, 0)
	require.NoError(t, err)
	require.Equal(t, []string{m3.ID}, pie.Map(unreported, func(m scheduledomain.ScheduledMatch) string { return m.ID }))
	unreported, err = s.UnreportedMatches(ctx, guildID, 1)
	require.NoError(t, err)
	require.Empty(t, unreported)

	standings, err := s.Standings(ctx, guildID, "premier")
	require.NoError(t, err)
	want := []scheduledomain.Standing{
		{Team: "Sharks", MatchWins: 1, GameWins: 5, GameLosses: 3},
		{Team: "Foxes", GameWins: 2, GameLosses: 2},
		{Team: "Owls", MatchLosses: 1, GameWins: 1, GameLosses: 3},
	}
	if diff := cmp.Diff(want, standings); diff != "" {
		t.Errorf("standings (-want +got):\n%s", diff)
	}

	removed, err := s.RemoveMatch(ctx, guildID, m3.ID)
	require.NoError(t, err)
	require.Equal(t, m3.ID, removed.Success.ID)
	removed, err = s.RemoveMatch(ctx, guildID, m3.ID)
	require.NoError(t, err)
	require.ErrorIs(t, removed.Failure.Err, ErrMatchNotFound)

	cleared, err := s.ClearSchedule(ctx, guildID)
	require.NoError(t, err)
	require.Equal(t, 2, *cleared.Success)
	all, err := s.Matches(ctx, guildID)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestImportSchedule(t *testing.T) {
	s, sched, _ := newTestService(t)
	data := strings.Join([]string{
		"match day,date,home,away,type,format",
		`1,"March 7, 2024",Sharks,Owls,Regular Season,BO-5`,
		`1,"March 7, 2024",Sharks,Bears,Regular Season,BO-5`,
		`2,"March 14, 2024",Owls,Foxes,Postseason,GS-4`,
	}, "\n")

	res, err := s.ImportSchedule(context.Background(), guildID, "season.csv", []byte(data))
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.Equal(t, 2, res.Success.Added)
	require.Len(t, res.Success.Errors, 1)
	require.Contains(t, res.Success.Errors[0], "line 3")
	require.Len(t, sched.Calls(), 2)

	res, err = s.ImportSchedule(context.Background(), guildID, "season.txt", []byte(data))
	require.NoError(t, err)
	require.True(t, res.IsFailure())
}
