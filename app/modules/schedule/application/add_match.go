package scheduleservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/google/uuid"
)

// ReportDelay is how long after a match night's window closes the automatic
// report runs.
const ReportDelay = time.Hour

// AddMatchRequest describes a match to schedule.
type AddMatchRequest struct {
	MatchDay    int
	MatchDate   string
	Home        string
	Away        string
	MatchType   string
	MatchFormat string
}

// AddMatch validates and schedules a match between two teams of the same tier.
func (s *ScheduleService) AddMatch(ctx context.Context, guildID string, req AddMatchRequest) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
	return withTelemetry(s, ctx, "AddMatch", guildID, func(ctx context.Context) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
		return s.addMatch(ctx, guildID, req)
	})
}

func (s *ScheduleService) addMatch(ctx context.Context, guildID string, req AddMatchRequest) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
	type result = ScheduleResult[scheduledomain.ScheduledMatch]

	if req.MatchDay <= 0 {
		return fail[scheduledomain.ScheduledMatch](ErrInvalidMatchDay), nil
	}
	format, err := scheduledomain.ParseMatchFormat(req.MatchFormat)
	if err != nil {
		return fail[scheduledomain.ScheduledMatch](err), nil
	}

	loc, err := settingsservice.Location(ctx, s.store, guildID)
	if err != nil {
		return result{}, err
	}
	date, err := ParseMatchDate(req.MatchDate, loc, s.now())
	if err != nil {
		return fail[scheduledomain.ScheduledMatch](err), nil
	}

	if strings.EqualFold(strings.TrimSpace(req.Home), strings.TrimSpace(req.Away)) {
		return fail[scheduledomain.ScheduledMatch](ErrSameTeam), nil
	}
	home, err := s.teams.TeamByName(ctx, guildID, req.Home)
	if err != nil {
		return teamFailure(err)
	}
	away, err := s.teams.TeamByName(ctx, guildID, req.Away)
	if err != nil {
		return teamFailure(err)
	}
	if home.Tier != away.Tier {
		return fail[scheduledomain.ScheduledMatch](fmt.Errorf("%w: %s is %s, %s is %s", ErrTierMismatch, home.Name, home.Tier, away.Name, away.Tier)), nil
	}

	matchType := strings.TrimSpace(req.MatchType)
	if matchType == "" {
		matchType = scheduledomain.MatchTypeRegularSeason
	}

	unlock := s.lock(guildID)
	defer unlock()

	sch, err := s.schedules(ctx, guildID)
	if err != nil {
		return result{}, err
	}
	lobbies, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyLobbyHashes, map[int][]string{})
	if err != nil {
		return result{}, err
	}
	roomName, roomPass, err := s.generateLobby(lobbies[req.MatchDay])
	if err != nil {
		return result{}, err
	}

	match := scheduledomain.ScheduledMatch{
		ID:          uuid.NewString(),
		Tier:        home.Tier,
		MatchDay:    req.MatchDay,
		MatchDate:   FormatMatchDate(date),
		Home:        home.Name,
		Away:        away.Name,
		MatchType:   matchType,
		MatchFormat: format,
		RoomName:    roomName,
		RoomPass:    roomPass,
	}

	if sch[match.Tier] == nil {
		sch[match.Tier] = map[int][]scheduledomain.ScheduledMatch{}
	}
	sch[match.Tier][match.MatchDay] = append(sch[match.Tier][match.MatchDay], match)
	lobbies[match.MatchDay] = append(lobbies[match.MatchDay], roomName)

	if err := s.saveSchedules(ctx, guildID, sch); err != nil {
		return result{}, err
	}
	if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyLobbyHashes, lobbies); err != nil {
		return result{}, err
	}

	s.scheduleReport(ctx, guildID, match.MatchDay, date)
	return results.SuccessResult[scheduledomain.ScheduledMatch, Failure](match), nil
}

// scheduleReport queues the automatic report for the end of the match night.
// Failures only cost the automation, so they are logged.
func (s *ScheduleService) scheduleReport(ctx context.Context, guildID string, matchDay int, date time.Time) {
	if s.scheduler == nil {
		return
	}
	at := date.Add(24*time.Hour - time.Second).Add(ReportDelay)
	if err := s.scheduler.ScheduleMatchDayReport(ctx, guildID, matchDay, at); err != nil {
		s.logger.WarnContext(ctx, "Failed to schedule match day report",
			slog.String("guild_id", guildID),
			slog.Int("match_day", matchDay),
			slog.Any("error", err),
		)
	}
}

func teamFailure(err error) (ScheduleResult[scheduledomain.ScheduledMatch], error) {
	if errors.Is(err, leagueservice.ErrTeamNotFound) {
		return fail[scheduledomain.ScheduledMatch](err), nil
	}
	return ScheduleResult[scheduledomain.ScheduledMatch]{}, err
}
