package bcdomain

import (
	"regexp"
	"strings"
	"time"
)

// MinFullReplayDuration is the shortest replay counted as a completed game.
const MinFullReplayDuration = 300

// PlayerID is a player's platform identity as reported by ballchasing.
type PlayerID struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`
}

// Player is one participant on a replay side.
type Player struct {
	Name      string   `json:"name"`
	ID        PlayerID `json:"id"`
	StartTime float64  `json:"start_time"`
	EndTime   float64  `json:"end_time"`
}

// Side is the blue or orange team of a replay.
type Side struct {
	Name    string   `json:"name"`
	Goals   int      `json:"goals"`
	Players []Player `json:"players"`
}

// Uploader is the account that uploaded a replay.
type Uploader struct {
	Name    string `json:"name"`
	SteamID string `json:"steam_id"`
}

// Replay is a replay summary returned by the ballchasing search API.
type Replay struct {
	ID       string    `json:"id"`
	Link     string    `json:"link"`
	Title    string    `json:"replay_title"`
	Created  time.Time `json:"created"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	MapCode  string    `json:"map_code"`
	MapName  string    `json:"map_name"`
	Playlist string    `json:"playlist_id"`
	Uploader Uploader  `json:"uploader"`
	Blue     Side      `json:"blue"`
	Orange   Side      `json:"orange"`
}

// IsFullReplay reports whether the replay is a completed game: long enough,
// not level, and with someone present from kickoff.
func IsFullReplay(r Replay) bool {
	if r.Duration < MinFullReplayDuration {
		return false
	}
	if r.Blue.Goals == r.Orange.Goals {
		return false
	}
	for _, side := range []Side{r.Blue, r.Orange} {
		for _, p := range side.Players {
			if p.StartTime == 0 {
				return true
			}
		}
	}
	return false
}

var nonWord = regexp.MustCompile(`\W+`)

// NormalizeName strips non-word characters and lower-cases a team name.
func NormalizeName(name string) string {
	return strings.ToLower(nonWord.ReplaceAllString(name, ""))
}

// NamesMatch reports whether a replay side name and a league team name refer
// to the same team. Either may be an abbreviation of the other. Empty names
// never match.
func NamesMatch(sideName, teamName string) bool {
	return nameScore(sideName, teamName) > 0
}

// nameScore ranks how well a side name fits a team name: 2 for equal
// normalized names, 1 when one contains the other, 0 otherwise.
func nameScore(sideName, teamName string) int {
	side, team := NormalizeName(sideName), NormalizeName(teamName)
	switch {
	case side == "" || team == "":
		return 0
	case side == team:
		return 2
	case strings.Contains(team, side) || strings.Contains(side, team):
		return 1
	default:
		return 0
	}
}

// Orientation says which replay side played as the home team.
type Orientation int

const (
	// Ambiguous means the sides could not be told apart.
	Ambiguous Orientation = iota
	BlueHome
	OrangeHome
)

func (o Orientation) String() string {
	switch o {
	case BlueHome:
		return "blue_home"
	case OrangeHome:
		return "orange_home"
	default:
		return "ambiguous"
	}
}

// ResolveSides decides which replay side is the home team. Each orientation
// sums the name scores of its two sides, so an exact name outranks a
// substring; equal totals are ambiguous.
func ResolveSides(home, away string, r Replay) Orientation {
	blueHome := nameScore(r.Blue.Name, home) + nameScore(r.Orange.Name, away)
	orangeHome := nameScore(r.Orange.Name, home) + nameScore(r.Blue.Name, away)
	switch {
	case blueHome > orangeHome:
		return BlueHome
	case orangeHome > blueHome:
		return OrangeHome
	default:
		return Ambiguous
	}
}

// IsValidMatchReplay reports whether a full replay names both scheduled teams.
func IsValidMatchReplay(home, away string, r Replay) bool {
	if !IsFullReplay(r) {
		return false
	}
	homeFound := NamesMatch(r.Blue.Name, home) || NamesMatch(r.Orange.Name, home)
	awayFound := NamesMatch(r.Blue.Name, away) || NamesMatch(r.Orange.Name, away)
	return homeFound && awayFound
}

// HomeAwayGoals splits a replay's goals into home and away. ok is false when
// the sides are ambiguous.
func HomeAwayGoals(home, away string, r Replay) (homeGoals, awayGoals int, ok bool) {
	switch ResolveSides(home, away, r) {
	case BlueHome:
		return r.Blue.Goals, r.Orange.Goals, true
	case OrangeHome:
		return r.Orange.Goals, r.Blue.Goals, true
	default:
		return 0, 0, false
	}
}

// PlayerNames lists every named player on both sides.
func (r Replay) PlayerNames() []string {
	var names []string
	for _, side := range []Side{r.Blue, r.Orange} {
		for _, p := range side.Players {
			if p.Name != "" {
				names = append(names, p.Name)
			}
		}
	}
	return names
}
