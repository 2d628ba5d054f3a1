package bcdomain

import (
	"time"

	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
)

// windowOpenHour is when league matches start, local to the guild.
const windowOpenHour = 21

// SearchWindow returns the UTC search bounds for a match played on date in
// loc: 21:00:00 to 23:59:59 local time.
func SearchWindow(date time.Time, loc *time.Location) (after, before time.Time) {
	y, m, d := date.Date()
	after = time.Date(y, m, d, windowOpenHour, 0, 0, 0, loc)
	before = time.Date(y, m, d, 23, 59, 59, 0, loc)
	return after.UTC(), before.UTC()
}

// RecordOutcome is what happened to a replay offered to a DiscoveryState.
type RecordOutcome int

const (
	Counted RecordOutcome = iota
	Duplicate
	NotMatch
	SidesAmbiguous
	AlreadySettled
)

func (o RecordOutcome) String() string {
	switch o {
	case Counted:
		return "counted"
	case Duplicate:
		return "duplicate"
	case NotMatch:
		return "not_match"
	case SidesAmbiguous:
		return "ambiguous"
	case AlreadySettled:
		return "settled"
	default:
		return "unknown"
	}
}

// DiscoveryState accumulates the replays found for one match.
//
// Every counted replay adds one hash, one id and one win, so
// len(ReplayHashes) == len(MatchReplayIDs) == HomeWins+AwayWins.
type DiscoveryState struct {
	Match            scheduledomain.ScheduledMatch
	IsValidSet       bool
	ReplayHashes     map[uint64]struct{}
	MatchReplayIDs   []string
	HomeWins         int
	AwayWins         int
	Winner           string
	AccountsSearched []string
	PlayersSearched  []string
	// LatestReplay is the newest counted replay's creation time.
	LatestReplay time.Time
}

// NewDiscoveryState starts an empty search for match.
func NewDiscoveryState(match scheduledomain.ScheduledMatch) *DiscoveryState {
	return &DiscoveryState{
		Match:        match,
		ReplayHashes: map[uint64]struct{}{},
	}
}

// Record classifies a replay and counts it toward the match when it is a new,
// valid game with unambiguous sides.
func (s *DiscoveryState) Record(r Replay) RecordOutcome {
	if s.IsValidSet {
		return AlreadySettled
	}
	if !IsValidMatchReplay(s.Match.Home, s.Match.Away, r) {
		return NotMatch
	}
	homeGoals, awayGoals, ok := HomeAwayGoals(s.Match.Home, s.Match.Away, r)
	if !ok {
		return SidesAmbiguous
	}
	h := ContentHash(r)
	if _, seen := s.ReplayHashes[h]; seen {
		return Duplicate
	}

	s.ReplayHashes[h] = struct{}{}
	s.MatchReplayIDs = append(s.MatchReplayIDs, r.ID)
	if homeGoals > awayGoals {
		s.HomeWins++
	} else {
		s.AwayWins++
	}
	if r.Created.After(s.LatestReplay) {
		s.LatestReplay = r.Created
	}
	s.Winner = scheduledomain.Winner(s.Match.Home, s.HomeWins, s.AwayWins, s.Match.Away)
	s.IsValidSet = s.Match.MatchFormat.IsComplete(s.HomeWins, s.AwayWins)
	return Counted
}

// SearchedAccount notes an account whose uploads have been scanned.
func (s *DiscoveryState) SearchedAccount(accountID string) {
	s.AccountsSearched = append(s.AccountsSearched, accountID)
}

// SearchedPlayer notes a member whose accounts have all been scanned.
func (s *DiscoveryState) SearchedPlayer(memberID string) {
	s.PlayersSearched = append(s.PlayersSearched, memberID)
}

// GamesFound is the number of counted replays.
func (s *DiscoveryState) GamesFound() int { return len(s.MatchReplayIDs) }

// Summary renders the running score.
func (s *DiscoveryState) Summary() string {
	return scheduledomain.Summary(s.Match.Home, s.HomeWins, s.AwayWins, s.Match.Away)
}

// Report converts a settled state into the record attached to the match.
func (s *DiscoveryState) Report(groupID, groupLink, reportedBy string, at time.Time) scheduledomain.MatchReport {
	return scheduledomain.MatchReport{
		Winner:     s.Winner,
		HomeWins:   s.HomeWins,
		AwayWins:   s.AwayWins,
		Summary:    s.Summary(),
		GroupID:    groupID,
		GroupLink:  groupLink,
		ReplayIDs:  append([]string(nil), s.MatchReplayIDs...),
		ReportedBy: reportedBy,
		ReportedAt: at,
	}
}
