package bcdomain

import (
	"testing"
	"time"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2026, 3, 4, 2, 10, 0, 0, time.UTC)

func side(name string, goals int, players ...string) Side {
	s := Side{Name: name, Goals: goals}
	for _, p := range players {
		s.Players = append(s.Players, Player{Name: p})
	}
	return s
}

func newReplay(id, blue string, blueGoals int, orange string, orangeGoals int) Replay {
	return Replay{
		ID:       id,
		Created:  kickoff.Add(20 * time.Minute),
		Date:     kickoff,
		Duration: 312,
		MapCode:  "stadium_p",
		Blue:     side(blue, blueGoals, "alpha", "bravo", "charlie"),
		Orange:   side(orange, orangeGoals, "delta", "echo", "foxtrot"),
	}
}

func TestIsFullReplay(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Replay)
		want   bool
	}{
		{name: "complete game", mutate: func(*Replay) {}, want: true},
		{name: "too short", mutate: func(r *Replay) { r.Duration = 299 }, want: false},
		{name: "exactly minimum", mutate: func(r *Replay) { r.Duration = MinFullReplayDuration }, want: true},
		{name: "tied", mutate: func(r *Replay) { r.Orange.Goals = r.Blue.Goals }, want: false},
		{
			name: "nobody from kickoff",
			mutate: func(r *Replay) {
				for i := range r.Blue.Players {
					r.Blue.Players[i].StartTime = 12
				}
				for i := range r.Orange.Players {
					r.Orange.Players[i].StartTime = 40
				}
			},
			want: false,
		},
		{
			name: "one orange player from kickoff",
			mutate: func(r *Replay) {
				for i := range r.Blue.Players {
					r.Blue.Players[i].StartTime = 12
				}
				r.Orange.Players[0].StartTime = 40
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReplay("r1", "Gorillas", 3, "Peppermint", 1)
			tt.mutate(&r)
			require.Equal(t, tt.want, IsFullReplay(r))
		})
	}
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		side, team string
		want       bool
	}{
		{"gorillas", "Thermal Gorillas", true},
		{"Peppermint FC", "Peppermint", true},
		{"THERMAL-gorillas!", "Thermal Gorillas", true},
		{"Random A", "Thermal Gorillas", false},
		{"", "Thermal Gorillas", false},
		{"!!!", "Peppermint", false},
		{"Peppermint", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.side+"/"+tt.team, func(t *testing.T) {
			require.Equal(t, tt.want, NamesMatch(tt.side, tt.team))
		})
	}
}

func TestResolveSides(t *testing.T) {
	const home, away = "Thermal Gorillas", "Peppermint"

	tests := []struct {
		name          string
		blue, orange  string
		want          Orientation
		wantHomeGoals int
	}{
		{name: "blue home", blue: "gorillas", orange: "Peppermint FC", want: BlueHome, wantHomeGoals: 3},
		{name: "orange home", blue: "Peppermint FC", orange: "gorillas", want: OrangeHome, wantHomeGoals: 1},
		{name: "only home named", blue: "Blue", orange: "Thermal Gorillas", want: OrangeHome, wantHomeGoals: 1},
		{name: "both sides match home", blue: "gorillas", orange: "thermal", want: Ambiguous},
		{name: "no overlap", blue: "Random A", orange: "Random B", want: Ambiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReplay("r1", tt.blue, 3, tt.orange, 1)
			require.Equal(t, tt.want, ResolveSides(home, away, r))

			homeGoals, _, ok := HomeAwayGoals(home, away, r)
			require.Equal(t, tt.want != Ambiguous, ok)
			if ok {
				require.Equal(t, tt.wantHomeGoals, homeGoals)
			}
		})
	}
}

func TestResolveSides_NestedNames(t *testing.T) {
	const home, away = "Knights", "Dark Knights"

	tests := []struct {
		name         string
		blue, orange string
		want         Orientation
	}{
		{name: "exact names blue home", blue: "Knights", orange: "Dark Knights", want: BlueHome},
		{name: "exact names orange home", blue: "Dark Knights", orange: "Knights", want: OrangeHome},
		{name: "exact away with abbreviated home", blue: "knight", orange: "DARK-KNIGHTS", want: BlueHome},
		{name: "same name both sides", blue: "Knights", orange: "Knights", want: Ambiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReplay("r1", tt.blue, 3, tt.orange, 1)
			require.True(t, IsValidMatchReplay(home, away, r))
			require.Equal(t, tt.want, ResolveSides(home, away, r))
		})
	}
}

func TestIsValidMatchReplay(t *testing.T) {
	const home, away = "Thermal Gorillas", "Peppermint"

	require.True(t, IsValidMatchReplay(home, away, newReplay("r1", "gorillas", 3, "Peppermint FC", 1)))
	require.False(t, IsValidMatchReplay(home, away, newReplay("r2", "Random A", 3, "Random B", 1)))
	require.False(t, IsValidMatchReplay(home, away, newReplay("r3", "gorillas", 2, "Peppermint FC", 2)))
	require.False(t, IsValidMatchReplay(home, away, newReplay("r4", "gorillas", 2, "Someone Else", 1)))
}

func TestContentHash(t *testing.T) {
	base := newReplay("r1", "gorillas", 3, "Peppermint", 1)

	reupload := base
	reupload.ID = "other-id"
	reupload.Created = base.Created.Add(3 * time.Hour)
	reupload.Date = base.Date.Add(90 * time.Second)
	reupload.Duration = base.Duration + 2
	reupload.Blue.Players = []Player{{Name: "charlie"}, {Name: "alpha"}, {Name: "bravo"}}
	require.Equal(t, ContentHash(base), ContentHash(reupload))

	otherScore := base
	otherScore.Orange.Goals = 2
	require.NotEqual(t, ContentHash(base), ContentHash(otherScore))

	otherMap := base
	otherMap.MapCode = "eurostadium_p"
	require.NotEqual(t, ContentHash(base), ContentHash(otherMap))

	laterGame := base
	laterGame.Date = base.Date.Add(15 * time.Minute)
	require.NotEqual(t, ContentHash(base), ContentHash(laterGame))

	noDate := base
	noDate.Date = time.Time{}
	noDate.Created = base.Date
	require.Equal(t, ContentHash(base), ContentHash(noDate))
}

func TestSearchWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date, err := scheduledomain.ScheduledMatch{MatchDate: "March 4, 2026"}.Date(loc)
	require.NoError(t, err)

	after, before := SearchWindow(date, loc)
	require.Equal(t, time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC), after)
	require.Equal(t, time.Date(2026, 3, 5, 4, 59, 59, 0, time.UTC), before)
}

func TestAccountUploaderID(t *testing.T) {
	id, ok := Account{Platform: "Steam", ID: "76561198000000001"}.UploaderID()
	require.True(t, ok)
	require.Equal(t, "76561198000000001", id)

	_, ok = Account{Platform: PlatformEpic, ID: "abc"}.UploaderID()
	require.False(t, ok)
	require.Equal(t, "epic:abc", Account{Platform: "Epic", ID: "abc"}.PlayerFilter())
}
