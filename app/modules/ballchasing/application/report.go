package bcservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
)

// ReportRequest selects the match to report. Without a MatchID the invoker's
// team match on the current match day is used. A ChannelID enables the live
// status message.
type ReportRequest struct {
	MatchID   string
	InvokerID string
	ChannelID string
}

// ReportOutcome is a reported match.
type ReportOutcome struct {
	Match     scheduledomain.ScheduledMatch `json:"match"`
	Discovery *DiscoverySummary             `json:"discovery"`
}

// ReportMatch finds the match's replays, files them into the league's group
// hierarchy and records the result on the schedule.
func (s *BallchasingService) ReportMatch(ctx context.Context, guildID string, req ReportRequest) (BallchasingResult[ReportOutcome], error) {
	return withTelemetry(s, ctx, "ReportMatch", guildID, func(ctx context.Context) (BallchasingResult[ReportOutcome], error) {
		topGroup, failure, err := s.reportPreconditions(ctx, guildID)
		if err != nil || failure != nil {
			return BallchasingResult[ReportOutcome]{Failure: failure}, err
		}

		match, err := s.selectMatch(ctx, guildID, req)
		if err != nil {
			return businessOr[ReportOutcome](err, ErrMatchNotFound, scheduleservice.ErrMatchNotFound, leagueservice.ErrNoTeamForMember, leagueservice.ErrTeamNotFound)
		}
		if match.Reported() {
			return fail[ReportOutcome](fmt.Errorf("%w: %s", ErrAlreadyReported, match.Title())), nil
		}

		status := s.newStatusMessage(ctx, guildID, req.ChannelID, match)
		status.searching(ctx)

		v, err, _ := s.inflight.Do(guildID+"/"+match.ID, func() (any, error) {
			return s.reportMatch(ctx, guildID, topGroup, match, req.InvokerID, status)
		})
		if err != nil {
			status.failed(ctx, err)
			return BallchasingResult[ReportOutcome]{}, err
		}
		result := v.(BallchasingResult[ReportOutcome])
		if result.Failure != nil {
			status.failed(ctx, result.Failure.Err)
			return result, nil
		}
		status.succeeded(ctx, result.Success.Discovery.Summary, result.Success.Match.Report.GroupLink)
		return result, nil
	})
}

// businessOr converts err into a failure result when it wraps one of the
// listed errors, and returns it as an infrastructure error otherwise.
func businessOr[S any](err error, targets ...error) (BallchasingResult[S], error) {
	for _, target := range targets {
		if errors.Is(err, target) {
			return fail[S](err), nil
		}
	}
	return BallchasingResult[S]{}, err
}

func (s *BallchasingService) reportPreconditions(ctx context.Context, guildID string) (string, *Failure, error) {
	if _, err := s.registry.Client(ctx, guildID); err != nil {
		if errors.Is(err, ErrNoAuthToken) {
			return "", &Failure{Err: err}, nil
		}
		return "", nil, err
	}
	topGroup, err := settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyTopLevelGroup)
	if err != nil {
		return "", nil, err
	}
	if topGroup == nil || *topGroup == "" {
		return "", &Failure{Err: ErrNoTopLevelGroup}, nil
	}
	return *topGroup, nil, nil
}

func (s *BallchasingService) selectMatch(ctx context.Context, guildID string, req ReportRequest) (scheduledomain.ScheduledMatch, error) {
	if req.MatchID != "" {
		return s.matches.MatchByID(ctx, guildID, req.MatchID)
	}
	team, _, err := s.league.TeamForUser(ctx, guildID, req.InvokerID)
	if err != nil {
		return scheduledomain.ScheduledMatch{}, err
	}
	day, err := s.matches.MatchDay(ctx, guildID)
	if err != nil {
		return scheduledomain.ScheduledMatch{}, err
	}
	return s.matches.TeamMatch(ctx, guildID, team.Name, day)
}

// reportMatch runs one reconciliation. It is shared by interactive and bulk
// reporting and assumes the preconditions hold.
func (s *BallchasingService) reportMatch(
	ctx context.Context,
	guildID, topGroup string,
	match scheduledomain.ScheduledMatch,
	invokerID string,
	status *statusMessage,
) (BallchasingResult[ReportOutcome], error) {
	state, err := s.FindMatchReplays(ctx, guildID, match, invokerID)
	if err != nil {
		if errors.Is(err, leagueservice.ErrTeamNotFound) {
			return fail[ReportOutcome](err), nil
		}
		return BallchasingResult[ReportOutcome]{}, err
	}

	summary := Summarize(state)
	if state.GamesFound() == 0 {
		return results.FailureResult[ReportOutcome](Failure{Err: ErrNoReplaysFound, State: summary}), nil
	}
	if !state.IsValidSet {
		err := fmt.Errorf("%w: found %d game(s), %s", ErrIncompleteSet, state.GamesFound(), state.Summary())
		return results.FailureResult[ReportOutcome](Failure{Err: err, State: summary}), nil
	}

	status.uploading(ctx, state.Summary())

	api, err := s.registry.Client(ctx, guildID)
	if err != nil {
		return BallchasingResult[ReportOutcome]{}, err
	}
	group, err := s.matchGroup(ctx, api, guildID, topGroup, match)
	if err != nil {
		return BallchasingResult[ReportOutcome]{}, fmt.Errorf("failed to prepare ballchasing group: %w", err)
	}
	if err := s.uploadReplays(ctx, api, group.ID, state.MatchReplayIDs); err != nil {
		return BallchasingResult[ReportOutcome]{}, err
	}

	link := bcclient.GroupLink(group.ID)
	report := state.Report(group.ID, link, invokerID, s.now())
	updated, err := s.matches.AttachReport(ctx, guildID, match.ID, report)
	if err != nil {
		return BallchasingResult[ReportOutcome]{}, err
	}

	s.publish(ctx, guildID, eventbus.MatchReportedV1, MatchReportedPayload{GuildID: guildID, Match: updated})

	return results.SuccessResult[ReportOutcome, Failure](ReportOutcome{Match: updated, Discovery: summary}), nil
}

// TierGroupName orders tier groups by rank, e.g. "1Premier".
func TierGroupName(rank int, tier string) string {
	return fmt.Sprintf("%d%s", rank, tier)
}

// MatchDayGroupName is "Match Day 03".
func MatchDayGroupName(day int) string {
	return fmt.Sprintf("Match Day %02d", day)
}

// matchGroup resolves top > tier > match day > "Home vs Away", creating
// missing groups.
func (s *BallchasingService) matchGroup(ctx context.Context, api API, guildID, topGroup string, match scheduledomain.ScheduledMatch) (bcclient.Group, error) {
	rank, err := s.league.TierRank(ctx, guildID, match.Tier)
	if err != nil {
		return bcclient.Group{}, err
	}
	parent := topGroup
	var group bcclient.Group
	for _, name := range []string{TierGroupName(rank, match.Tier), MatchDayGroupName(match.MatchDay), match.Title()} {
		group, err = api.EnsureChildGroup(ctx, parent, name)
		if err != nil {
			return bcclient.Group{}, err
		}
		parent = group.ID
	}
	return group, nil
}

// uploadReplays copies each replay into the group. A replay ballchasing
// already holds is moved into the group instead.
func (s *BallchasingService) uploadReplays(ctx context.Context, api API, groupID string, replayIDs []string) error {
	for _, id := range replayIDs {
		data, err := api.Download(ctx, id)
		if err != nil {
			s.metrics.RecordUpload(ctx, "failed")
			return fmt.Errorf("failed to download replay %s: %w", id, err)
		}
		res, err := api.Upload(ctx, id+".replay", data, groupID)
		if err != nil {
			s.metrics.RecordUpload(ctx, "failed")
			return fmt.Errorf("failed to upload replay %s: %w", id, err)
		}
		if res.Duplicate {
			group := groupID
			if err := api.PatchReplay(ctx, res.ID, bcclient.ReplayPatch{Group: &group}); err != nil {
				s.metrics.RecordUpload(ctx, "failed")
				return fmt.Errorf("failed to move duplicate replay %s: %w", res.ID, err)
			}
			s.metrics.RecordUpload(ctx, "duplicate")
			continue
		}
		s.metrics.RecordUpload(ctx, "created")
	}
	return nil
}

// MatchDayReport summarizes a bulk run.
type MatchDayReport struct {
	MatchDay int                             `json:"match_day"`
	Reported []scheduledomain.ScheduledMatch `json:"reported"`
	Failed   []MatchReportFailedPayload      `json:"failed"`
}

// ReportMatches reports every unreported match of a match day in turn.
// matchDay 0 means the guild's current match day. Per-match problems are
// collected rather than aborting the run.
func (s *BallchasingService) ReportMatches(ctx context.Context, guildID string, matchDay int, invokerID string) (BallchasingResult[MatchDayReport], error) {
	return withTelemetry(s, ctx, "ReportMatches", guildID, func(ctx context.Context) (BallchasingResult[MatchDayReport], error) {
		topGroup, failure, err := s.reportPreconditions(ctx, guildID)
		if err != nil || failure != nil {
			return BallchasingResult[MatchDayReport]{Failure: failure}, err
		}

		if matchDay == 0 {
			if matchDay, err = s.matches.MatchDay(ctx, guildID); err != nil {
				return BallchasingResult[MatchDayReport]{}, err
			}
		}
		pending, err := s.matches.UnreportedMatches(ctx, guildID, matchDay)
		if err != nil {
			return BallchasingResult[MatchDayReport]{}, err
		}

		out := MatchDayReport{MatchDay: matchDay}
		for _, match := range pending {
			if err := ctx.Err(); err != nil {
				return BallchasingResult[MatchDayReport]{}, err
			}
			v, err, _ := s.inflight.Do(guildID+"/"+match.ID, func() (any, error) {
				return s.reportMatch(ctx, guildID, topGroup, match, invokerID, nil)
			})
			if err != nil {
				s.logger.ErrorContext(ctx, "Match report failed",
					slog.String("guild_id", guildID),
					slog.String("match_id", match.ID),
					slog.Any("error", err),
				)
				out.Failed = append(out.Failed, s.reportFailed(ctx, guildID, match, err, nil, false))
				continue
			}
			result := v.(BallchasingResult[ReportOutcome])
			if result.Failure != nil {
				out.Failed = append(out.Failed, s.reportFailed(ctx, guildID, match, result.Failure.Err, result.Failure.State, true))
				continue
			}
			out.Reported = append(out.Reported, result.Success.Match)
		}

		completed := MatchDayReportCompletedPayload{GuildID: guildID, MatchDay: matchDay}
		for _, m := range out.Reported {
			completed.Reported = append(completed.Reported, m.ID)
		}
		for _, f := range out.Failed {
			completed.Failed = append(completed.Failed, f.Match.ID)
		}
		s.publish(ctx, guildID, eventbus.MatchDayReportCompletedV1, completed)

		return results.SuccessResult[MatchDayReport, Failure](out), nil
	})
}

func (s *BallchasingService) reportFailed(
	ctx context.Context,
	guildID string,
	match scheduledomain.ScheduledMatch,
	err error,
	state *DiscoverySummary,
	recoverable bool,
) MatchReportFailedPayload {
	payload := MatchReportFailedPayload{
		GuildID:     guildID,
		Match:       match,
		Reason:      err.Error(),
		Recoverable: recoverable,
	}
	if state != nil {
		payload.GamesFound = state.GamesFound
		payload.Summary = state.Summary
	}
	s.publish(ctx, guildID, eventbus.MatchReportFailedV1, payload)
	return payload
}
