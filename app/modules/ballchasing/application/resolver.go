package bcservice

import (
	"context"
	"log/slog"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	scheduledomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
)

// PlayerAccounts is a rostered member with the accounts to search.
type PlayerAccounts struct {
	Member   discord.Member
	Accounts []bcdomain.Account
}

// MatchPlayers lists both rosters in search order: the invoker, then the
// captains, then everyone else in roster order.
func (s *BallchasingService) MatchPlayers(ctx context.Context, guildID string, match scheduledomain.ScheduledMatch, invokerID string) ([]discord.Member, error) {
	var (
		captains []discord.Member
		rest     []discord.Member
	)
	for _, name := range []string{match.Home, match.Away} {
		team, err := s.league.TeamByName(ctx, guildID, name)
		if err != nil {
			return nil, err
		}
		roster, err := s.league.Roster(ctx, guildID, team)
		if err != nil {
			return nil, err
		}
		captain, hasCaptain, err := s.league.Captain(ctx, guildID, team)
		if err != nil {
			return nil, err
		}
		for _, m := range roster {
			if hasCaptain && m.ID == captain.ID {
				captains = append(captains, m)
			} else {
				rest = append(rest, m)
			}
		}
	}

	ordered := append(captains, rest...)
	for i, m := range ordered {
		if m.ID == invokerID && i > 0 {
			ordered = append([]discord.Member{m}, append(ordered[:i:i], ordered[i+1:]...)...)
			break
		}
	}
	return ordered, nil
}

// ResolveAccounts maps each member to their accounts. A failed lookup leaves
// the member with whatever accounts were found, possibly none.
func (s *BallchasingService) ResolveAccounts(ctx context.Context, guildID string, members []discord.Member) []PlayerAccounts {
	out := make([]PlayerAccounts, 0, len(members))
	for _, m := range members {
		accounts, err := s.accounts.Accounts(ctx, guildID, m.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "Account lookup failed",
				slog.String("guild_id", guildID),
				slog.String("member_id", m.ID),
				slog.Int("accounts_found", len(accounts)),
				slog.Any("error", err),
			)
		}
		out = append(out, PlayerAccounts{Member: m, Accounts: accounts})
	}
	return out
}
