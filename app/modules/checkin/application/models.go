package checkinservice

import (
	"context"
	"strconv"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	scheduleservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/application"
)

// PermFARoleName marks free agents who stay free agents for the season.
const PermFARoleName = "PermFA"

// CheckIn is a member's availability entry.
type CheckIn struct {
	UserID   string
	MatchDay int
	Tier     string
}

// Player is a checked in free agent.
type Player struct {
	ID        string
	Name      string
	Permanent bool
}

// Availability lists the free agents checked in for a tier on a match day.
type Availability struct {
	Tier     string
	MatchDay int
	Players  []Player
}

// Cleared describes a cleared slice of the check-in board. An empty Tier
// means every tier of the match day.
type Cleared struct {
	MatchDay int
	Tier     string
}

// Failure is the business failure payload for check-in operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

// League is the part of the league service check-ins depend on.
type League interface {
	Tiers(ctx context.Context, guildID string) ([]string, error)
}

// MatchDays reports the current match day.
type MatchDays interface {
	MatchDay(ctx context.Context, guildID string) (int, error)
}

var (
	_ League    = (*leagueservice.LeagueService)(nil)
	_ MatchDays = (*scheduleservice.ScheduleService)(nil)
)

// board is the persisted check-in state: match day, then tier, then the
// member ids in check-in order.
type board map[string]map[string][]string

func dayKey(day int) string { return strconv.Itoa(day) }

func (b board) tier(day int, tier string) []string {
	return b[dayKey(day)][tier]
}

func (b board) setTier(day int, tier string, ids []string) {
	k := dayKey(day)
	if b[k] == nil {
		b[k] = map[string][]string{}
	}
	b[k][tier] = ids
}
