package scheduleservice

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
)

// ImportSummary reports the outcome of a schedule import.
type ImportSummary struct {
	Added  int
	Errors []string
}

// ImportSchedule adds every match in a CSV or XLSX schedule. Rows that fail
// validation are reported and skipped.
func (s *ScheduleService) ImportSchedule(ctx context.Context, guildID, fileName string, data []byte) (ScheduleResult[ImportSummary], error) {
	return withTelemetry(s, ctx, "ImportSchedule", guildID, func(ctx context.Context) (ScheduleResult[ImportSummary], error) {
		parser, err := s.parsers.GetParser(fileName)
		if err != nil {
			return fail[ImportSummary](err), nil
		}
		rows, err := parser.Parse(data, fileName)
		if err != nil {
			return fail[ImportSummary](err), nil
		}

		var summary ImportSummary
		for _, row := range rows {
			res, err := s.addMatch(ctx, guildID, AddMatchRequest{
				MatchDay:    row.MatchDay,
				MatchDate:   row.MatchDate,
				Home:        row.Home,
				Away:        row.Away,
				MatchType:   row.MatchType,
				MatchFormat: row.MatchFormat,
			})
			if err != nil {
				return ScheduleResult[ImportSummary]{}, fmt.Errorf("line %d: %w", row.Line, err)
			}
			if res.IsFailure() {
				summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", row.Line, res.Failure.Err))
				continue
			}
			summary.Added++
		}
		return results.SuccessResult[ImportSummary, Failure](summary), nil
	})
}
