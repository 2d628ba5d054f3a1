package scheduleservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
)

// FakeTeamDirectory resolves teams from a fixed list.
type FakeTeamDirectory struct {
	Teams []leagueservice.Team
	Err   error
}

func (f *FakeTeamDirectory) TeamByName(_ context.Context, _ string, name string) (leagueservice.Team, error) {
	if f.Err != nil {
		return leagueservice.Team{}, f.Err
	}
	for _, t := range f.Teams {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return leagueservice.Team{}, fmt.Errorf("%w: %s", leagueservice.ErrTeamNotFound, name)
}

type scheduledReport struct {
	GuildID  string
	MatchDay int
	At       time.Time
}

// FakeReportScheduler records scheduling requests.
type FakeReportScheduler struct {
	mu    sync.Mutex
	calls []scheduledReport
	Err   error
}

func (f *FakeReportScheduler) ScheduleMatchDayReport(_ context.Context, guildID string, matchDay int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scheduledReport{GuildID: guildID, MatchDay: matchDay, At: at})
	return f.Err
}

func (f *FakeReportScheduler) Calls() []scheduledReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scheduledReport(nil), f.calls...)
}
