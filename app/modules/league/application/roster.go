package leagueservice

import (
	"context"
	"strings"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/elliotchance/pie/v2"
)

// Roster returns the members holding both of the team's roles, captains first
// and otherwise ordered by display name.
func (s *LeagueService) Roster(ctx context.Context, guildID string, team Team) ([]discord.Member, error) {
	members, err := s.discord.Members(ctx, guildID)
	if err != nil {
		return nil, err
	}
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	captainRole, hasCaptainRole := discord.RoleByName(roles, CaptainRoleName)

	roster := discord.MembersWithRoles(members, team.FranchiseRoleID, team.TierRoleID)
	isCaptain := func(m discord.Member) bool { return hasCaptainRole && m.HasRole(captainRole.ID) }

	return pie.SortUsing(roster, func(a, b discord.Member) bool {
		if isCaptain(a) != isCaptain(b) {
			return isCaptain(a)
		}
		return strings.ToLower(a.DisplayName()) < strings.ToLower(b.DisplayName())
	}), nil
}

// Captain returns the team captain if one is assigned.
func (s *LeagueService) Captain(ctx context.Context, guildID string, team Team) (discord.Member, bool, error) {
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return discord.Member{}, false, err
	}
	captainRole, ok := discord.RoleByName(roles, CaptainRoleName)
	if !ok {
		return discord.Member{}, false, nil
	}
	roster, err := s.Roster(ctx, guildID, team)
	if err != nil {
		return discord.Member{}, false, err
	}
	for _, m := range roster {
		if m.HasRole(captainRole.ID) {
			return m, true, nil
		}
	}
	return discord.Member{}, false, nil
}

// SetPrefix stores the nickname prefix for a general manager's franchise.
func (s *LeagueService) SetPrefix(ctx context.Context, guildID, gmName, prefix string) (LeagueResult[string], error) {
	return withTelemetry(s, ctx, "SetPrefix", guildID, func(ctx context.Context) (LeagueResult[string], error) {
		prefixes, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyPrefixes, map[string]string{})
		if err != nil {
			return LeagueResult[string]{}, err
		}
		prefixes[strings.ToLower(strings.TrimSpace(gmName))] = strings.TrimSpace(prefix)
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyPrefixes, prefixes); err != nil {
			return LeagueResult[string]{}, err
		}
		return results.SuccessResult[string, Failure](prefix), nil
	})
}

// Prefix returns the nickname prefix for a general manager's franchise.
func (s *LeagueService) Prefix(ctx context.Context, guildID, gmName string) (string, bool, error) {
	prefixes, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyPrefixes, map[string]string{})
	if err != nil {
		return "", false, err
	}
	p, ok := prefixes[strings.ToLower(strings.TrimSpace(gmName))]
	return p, ok, nil
}
