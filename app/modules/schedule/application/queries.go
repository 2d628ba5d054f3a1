package scheduleservice

import (
	"context"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/elliotchance/pie/v2"
)

// SetMatchDay sets the league's current match day.
func (s *ScheduleService) SetMatchDay(ctx context.Context, guildID string, day int) (ScheduleResult[int], error) {
	return withTelemetry(s, ctx, "SetMatchDay", guildID, func(ctx context.Context) (ScheduleResult[int], error) {
		if day <= 0 {
			return fail[int](ErrInvalidMatchDay), nil
		}
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyMatchDay, day); err != nil {
			return ScheduleResult[int]{}, err
		}
		return results.SuccessResult[int, Failure](day), nil
	})
}

// MatchDay returns the current match day, 0 when never set.
func (s *ScheduleService) MatchDay(ctx context.Context, guildID string) (int, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyMatchDay, 0)
}

// Matches returns every scheduled match ordered by match day, tier, home team.
func (s *ScheduleService) Matches(ctx context.Context, guildID string) ([]scheduledomain.ScheduledMatch, error) {
	sch, err := s.schedules(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return flatten(sch), nil
}

func flatten(sch Schedules) []scheduledomain.ScheduledMatch {
	var all []scheduledomain.ScheduledMatch
	for _, days := range sch {
		for _, matches := range days {
			all = append(all, matches...)
		}
	}
	return pie.SortUsing(all, func(a, b scheduledomain.ScheduledMatch) bool {
		if a.MatchDay != b.MatchDay {
			return a.MatchDay < b.MatchDay
		}
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		return a.Home < b.Home
	})
}

// MatchesForDay returns every tier's matches on a match day.
func (s *ScheduleService) MatchesForDay(ctx context.Context, guildID string, day int) ([]scheduledomain.ScheduledMatch, error) {
	all, err := s.Matches(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(all, func(m scheduledomain.ScheduledMatch) bool { return m.MatchDay == day }), nil
}

// TeamMatches returns every match the team plays.
func (s *ScheduleService) TeamMatches(ctx context.Context, guildID, team string) ([]scheduledomain.ScheduledMatch, error) {
	all, err := s.Matches(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(all, func(m scheduledomain.ScheduledMatch) bool { return m.Involves(team) }), nil
}

// TeamMatch returns the team's first match on the given day.
func (s *ScheduleService) TeamMatch(ctx context.Context, guildID, team string, day int) (scheduledomain.ScheduledMatch, error) {
	matches, err := s.TeamMatches(ctx, guildID, team)
	if err != nil {
		return scheduledomain.ScheduledMatch{}, err
	}
	for _, m := range matches {
		if m.MatchDay == day {
			return m, nil
		}
	}
	return scheduledomain.ScheduledMatch{}, fmt.Errorf("%w: %s on match day %d", ErrMatchNotFound, team, day)
}

// MatchByID finds a match by id.
func (s *ScheduleService) MatchByID(ctx context.Context, guildID, matchID string) (scheduledomain.ScheduledMatch, error) {
	all, err := s.Matches(ctx, guildID)
	if err != nil {
		return scheduledomain.ScheduledMatch{}, err
	}
	for _, m := range all {
		if m.ID == matchID {
			return m, nil
		}
	}
	return scheduledomain.ScheduledMatch{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
}

// UnreportedMatches returns matches without a report. day 0 selects every day.
func (s *ScheduleService) UnreportedMatches(ctx context.Context, guildID string, day int) ([]scheduledomain.ScheduledMatch, error) {
	all, err := s.Matches(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(all, func(m scheduledomain.ScheduledMatch) bool {
		return !m.Reported() && (day == 0 || m.MatchDay == day)
	}), nil
}

// ClearSchedule removes every match and lobby record.
func (s *ScheduleService) ClearSchedule(ctx context.Context, guildID string) (ScheduleResult[int], error) {
	return withTelemetry(s, ctx, "ClearSchedule", guildID, func(ctx context.Context) (ScheduleResult[int], error) {
		unlock := s.lock(guildID)
		defer unlock()

		sch, err := s.schedules(ctx, guildID)
		if err != nil {
			return ScheduleResult[int]{}, err
		}
		removed := len(flatten(sch))
		if err := s.store.Clear(ctx, guildID, settingsservice.KeySchedules); err != nil {
			return ScheduleResult[int]{}, err
		}
		if err := s.store.Clear(ctx, guildID, settingsservice.KeyLobbyHashes); err != nil {
			return ScheduleResult[int]{}, err
		}
		return results.SuccessResult[int, Failure](removed), nil
	})
}

// RemoveMatch deletes one match.
func (s *ScheduleService) RemoveMatch(ctx context.Context, guildID, matchID string) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
	return withTelemetry(s, ctx, "RemoveMatch", guildID, func(ctx context.Context) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
		var removed *scheduledomain.ScheduledMatch
		err := s.updateMatch(ctx, guildID, matchID, func(day []scheduledomain.ScheduledMatch, i int) []scheduledomain.ScheduledMatch {
			m := day[i]
			removed = &m
			return append(day[:i:i], day[i+1:]...)
		})
		if err != nil {
			return matchFailure(err)
		}
		return results.SuccessResult[scheduledomain.ScheduledMatch, Failure](*removed), nil
	})
}

// updateMatch applies fn to the day slice holding the match and saves.
func (s *ScheduleService) updateMatch(
	ctx context.Context,
	guildID, matchID string,
	fn func(day []scheduledomain.ScheduledMatch, i int) []scheduledomain.ScheduledMatch,
) error {
	unlock := s.lock(guildID)
	defer unlock()

	sch, err := s.schedules(ctx, guildID)
	if err != nil {
		return err
	}
	for tier, days := range sch {
		for dayNum, matches := range days {
			for i, m := range matches {
				if m.ID == matchID {
					sch[tier][dayNum] = fn(matches, i)
					return s.saveSchedules(ctx, guildID, sch)
				}
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
}
