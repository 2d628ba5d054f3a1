package bcqueue

// MatchDayReportJob reconciles a guild's match day once its replays should
// be uploaded.
type MatchDayReportJob struct {
	GuildID  string `json:"guild_id"`
	MatchDay int    `json:"match_day"`
	// ReportAt is part of the args so that moving a match day's date
	// schedules a new run instead of colliding with the old one.
	ReportAt int64 `json:"report_at"`
}

// Kind returns the job type identifier for River
func (MatchDayReportJob) Kind() string { return "match_day_report" }

const queueName = "ballchasing"
