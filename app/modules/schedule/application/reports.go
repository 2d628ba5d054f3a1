package scheduleservice

import (
	"context"
	"errors"
	"strings"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/elliotchance/pie/v2"
)

// AttachReport stores a reconciled result on the match, replacing any earlier one.
func (s *ScheduleService) AttachReport(ctx context.Context, guildID, matchID string, report scheduledomain.MatchReport) (scheduledomain.ScheduledMatch, error) {
	var updated scheduledomain.ScheduledMatch
	err := s.updateMatch(ctx, guildID, matchID, func(day []scheduledomain.ScheduledMatch, i int) []scheduledomain.ScheduledMatch {
		r := report
		day[i].Report = &r
		updated = day[i]
		return day
	})
	return updated, err
}

// Standings tallies reported matches of a tier.
func (s *ScheduleService) Standings(ctx context.Context, guildID, tier string) ([]scheduledomain.Standing, error) {
	all, err := s.Matches(ctx, guildID)
	if err != nil {
		return nil, err
	}

	table := map[string]*scheduledomain.Standing{}
	row := func(team string) *scheduledomain.Standing {
		if st, ok := table[team]; ok {
			return st
		}
		st := &scheduledomain.Standing{Team: team}
		table[team] = st
		return st
	}

	for _, m := range all {
		if !strings.EqualFold(m.Tier, tier) {
			continue
		}
		home, away := row(m.Home), row(m.Away)
		if !m.Reported() {
			continue
		}
		r := m.Report
		home.GameWins += r.HomeWins
		home.GameLosses += r.AwayWins
		away.GameWins += r.AwayWins
		away.GameLosses += r.HomeWins
		switch r.Winner {
		case m.Home:
			home.MatchWins++
			away.MatchLosses++
		case m.Away:
			away.MatchWins++
			home.MatchLosses++
		}
	}

	out := make([]scheduledomain.Standing, 0, len(table))
	for _, st := range table {
		out = append(out, *st)
	}
	return pie.SortUsing(out, func(a, b scheduledomain.Standing) bool {
		if a.MatchWins != b.MatchWins {
			return a.MatchWins > b.MatchWins
		}
		if a.GameDiff() != b.GameDiff() {
			return a.GameDiff() > b.GameDiff()
		}
		return a.Team < b.Team
	}), nil
}

func matchFailure(err error) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
	if errors.Is(err, ErrMatchNotFound) {
		return fail[scheduledomain.ScheduledMatch](err), nil
	}
	return ScheduleResult[scheduledomain.ScheduledMatch]{}, err
}
