package scheduledomain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the human match date format, e.g. "March 4, 2024".
const DateLayout = "January 2, 2006"

const (
	MatchTypeRegularSeason = "Regular Season"
	MatchTypePostseason    = "Postseason"
	MatchTypePreseason     = "Preseason"
)

// ScheduledMatch is one fixture on the league schedule.
type ScheduledMatch struct {
	ID          string       `json:"id"`
	Tier        string       `json:"tier"`
	MatchDay    int          `json:"match_day"`
	MatchDate   string       `json:"match_date"`
	Home        string       `json:"home"`
	Away        string       `json:"away"`
	MatchType   string       `json:"match_type"`
	MatchFormat MatchFormat  `json:"match_format"`
	RoomName    string       `json:"room_name"`
	RoomPass    string       `json:"room_pass"`
	Report      *MatchReport `json:"report,omitempty"`
}

// Reported reports whether a result has been attached.
func (m ScheduledMatch) Reported() bool { return m.Report != nil }

// Involves reports whether the team plays in the match.
func (m ScheduledMatch) Involves(team string) bool {
	return strings.EqualFold(m.Home, team) || strings.EqualFold(m.Away, team)
}

// Title is "Home vs Away".
func (m ScheduledMatch) Title() string {
	return fmt.Sprintf("%s vs %s", m.Home, m.Away)
}

// Date parses MatchDate in loc.
func (m ScheduledMatch) Date(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, m.MatchDate, loc)
}

// MatchReport is the reconciled outcome attached to a match.
type MatchReport struct {
	Winner     string    `json:"winner"`
	HomeWins   int       `json:"home_wins"`
	AwayWins   int       `json:"away_wins"`
	Summary    string    `json:"summary"`
	GroupID    string    `json:"group_id,omitempty"`
	GroupLink  string    `json:"group_link,omitempty"`
	ReplayIDs  []string  `json:"replay_ids,omitempty"`
	ReportedBy string    `json:"reported_by,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// Summary renders "**Home** h - a **Away**".
func Summary(home string, homeWins, awayWins int, away string) string {
	return fmt.Sprintf("**%s** %d - %d **%s**", home, homeWins, awayWins, away)
}

// Winner names the side with more wins, or "" for a drawn game series.
func Winner(home string, homeWins, awayWins int, away string) string {
	switch {
	case homeWins > awayWins:
		return home
	case awayWins > homeWins:
		return away
	default:
		return ""
	}
}

// Standing is a team's record within a tier.
type Standing struct {
	Team        string `json:"team"`
	MatchWins   int    `json:"match_wins"`
	MatchLosses int    `json:"match_losses"`
	GameWins    int    `json:"game_wins"`
	GameLosses  int    `json:"game_losses"`
}

// GameDiff is game wins minus game losses.
func (s Standing) GameDiff() int { return s.GameWins - s.GameLosses }
