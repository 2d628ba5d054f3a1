package moderationservice

import "time"

const (
	// SpamJoinWindow is how long a username is remembered after its last join.
	SpamJoinWindow = 5 * time.Minute
	// NewAccountAge is the age below which a blacklisted name gets kicked.
	NewAccountAge = 24 * time.Hour

	ReasonSpamJoin          = "spam join"
	ReasonSpamJoinFirst     = ReasonSpamJoin + " - catch first"
	ReasonSuspiciousAccount = "suspicious new account"
)

// DefaultBlacklist is used until a guild edits its blacklist.
var DefaultBlacklist = []string{"reward", "giveaway", "give away", "gift", "drop", "bot"}

// Join is a member joining a guild.
type Join struct {
	GuildID   string
	UserID    string
	Username  string
	CreatedAt time.Time
}

// Kick is a member removed as a suspected bot.
type Kick struct {
	UserID   string
	Username string
	Reason   string
	Err      error
}

// JoinOutcome is what happened when a member joined.
type JoinOutcome struct {
	Kicks    []Kick
	Welcomed bool
}

// Flagged reports whether the joining member was treated as a bot.
func (o JoinOutcome) Flagged() bool { return len(o.Kicks) > 0 }

// RecentName is a username seen within the spam join window.
type RecentName struct {
	Name  string
	Joins int
}

// Failure is the business failure payload for moderation operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

type recentJoin struct {
	userID   string
	username string
}

type joinWindow struct {
	members []recentJoin
	last    time.Time
}
