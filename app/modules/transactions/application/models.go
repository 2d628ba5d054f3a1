package transactionservice

import (
	"context"

	dmservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/dm/application"
	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

const (
	LeagueRoleName  = "League"
	GMRoleName      = "General Manager"
	FreeAgentPrefix = "FA"
)

// Kind names a roster move.
type Kind string

const (
	KindSign  Kind = "sign"
	KindCut   Kind = "cut"
	KindTrade Kind = "trade"
)

// Transaction is a completed roster move and its announcement.
type Transaction struct {
	Kind          Kind
	Members       []string
	Announcement  string
	MessageID     string
	CutNoticeSent bool
}

// Failure is the business failure payload for transactions.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

// League is the part of the league service transactions depend on.
type League interface {
	TeamByName(ctx context.Context, guildID, name string) (leagueservice.Team, error)
	Tiers(ctx context.Context, guildID string) ([]string, error)
	Prefix(ctx context.Context, guildID, gmName string) (string, bool, error)
	FreeAgentRoles(ctx context.Context, guildID, tier string) ([]discord.Role, error)
}

// Messenger queues direct messages.
type Messenger interface {
	Enqueue(ctx context.Context, req dmservice.Request) error
}

var (
	_ League    = (*leagueservice.LeagueService)(nil)
	_ Messenger = (*dmservice.Dispatcher)(nil)
)
