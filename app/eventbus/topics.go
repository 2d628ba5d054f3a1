package eventbus

const (
	// MatchDayReportRequestedV1 asks for every unreported match of a match day to be reconciled.
	MatchDayReportRequestedV1 = "ballchasing.match_day.report.requested.v1"
	// MatchDayReportSkippedV1 announces a requested run that could not start.
	MatchDayReportSkippedV1 = "ballchasing.match_day.report.skipped.v1"
	// MatchReportedV1 announces a reconciled and uploaded match.
	MatchReportedV1 = "ballchasing.match.reported.v1"
	// MatchReportFailedV1 announces a match that could not be reconciled.
	MatchReportFailedV1 = "ballchasing.match.report_failed.v1"
	// MatchDayReportCompletedV1 summarizes a bulk report run.
	MatchDayReportCompletedV1 = "ballchasing.match_day.report.completed.v1"
)
