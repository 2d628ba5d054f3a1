package leagueservice

import (
	"context"
	"fmt"
	"strings"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"github.com/elliotchance/pie/v2"
)

func (s *LeagueService) Tiers(ctx context.Context, guildID string) ([]string, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyTiers, []string{})
}

// AddTier registers a tier. A guild role with the tier's name must exist.
func (s *LeagueService) AddTier(ctx context.Context, guildID, name string) (LeagueResult[string], error) {
	return withTelemetry(s, ctx, "AddTier", guildID, func(ctx context.Context) (LeagueResult[string], error) {
		name = strings.TrimSpace(name)
		tiers, err := s.Tiers(ctx, guildID)
		if err != nil {
			return LeagueResult[string]{}, err
		}
		if _, ok := findFold(tiers, name); ok {
			return fail[string](fmt.Errorf("%w: %s", ErrTierExists, name)), nil
		}

		roles, err := s.discord.Roles(ctx, guildID)
		if err != nil {
			return LeagueResult[string]{}, err
		}
		if _, ok := discord.RoleByName(roles, name); !ok {
			return fail[string](fmt.Errorf("%w: %s", ErrTierRoleMissing, name)), nil
		}

		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTiers, append(tiers, name)); err != nil {
			return LeagueResult[string]{}, err
		}
		return results.SuccessResult[string, Failure](name), nil
	})
}

// RemoveTier deletes a tier and every team in it.
func (s *LeagueService) RemoveTier(ctx context.Context, guildID, name string) (LeagueResult[string], error) {
	return withTelemetry(s, ctx, "RemoveTier", guildID, func(ctx context.Context) (LeagueResult[string], error) {
		tiers, err := s.Tiers(ctx, guildID)
		if err != nil {
			return LeagueResult[string]{}, err
		}
		stored, ok := findFold(tiers, name)
		if !ok {
			return fail[string](fmt.Errorf("%w: %s", ErrTierNotFound, name)), nil
		}

		teams, err := s.Teams(ctx, guildID)
		if err != nil {
			return LeagueResult[string]{}, err
		}
		for _, t := range teams {
			if strings.EqualFold(t.Tier, stored) {
				if err := s.deleteTeam(ctx, guildID, t.Name); err != nil {
					return LeagueResult[string]{}, err
				}
			}
		}

		remaining := pie.Filter(tiers, func(t string) bool { return t != stored })
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTiers, remaining); err != nil {
			return LeagueResult[string]{}, err
		}
		return results.SuccessResult[string, Failure](stored), nil
	})
}

// TierRank is the 1-based position of the tier among tier roles, ordered by
// role position from the top of the role list.
func (s *LeagueService) TierRank(ctx context.Context, guildID, tier string) (int, error) {
	tiers, err := s.Tiers(ctx, guildID)
	if err != nil {
		return 0, err
	}
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return 0, err
	}

	var tierRoles []discord.Role
	for _, name := range tiers {
		if r, ok := discord.RoleByName(roles, name); ok {
			tierRoles = append(tierRoles, r)
		}
	}
	tierRoles = pie.SortUsing(tierRoles, func(a, b discord.Role) bool { return a.Position > b.Position })

	for i, r := range tierRoles {
		if strings.EqualFold(r.Name, tier) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrTierNotFound, tier)
}

// FreeAgentRoles returns the general and per-tier free agent roles that exist.
func (s *LeagueService) FreeAgentRoles(ctx context.Context, guildID, tier string) ([]discord.Role, error) {
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	var out []discord.Role
	if r, ok := discord.RoleByName(roles, FreeAgentRoleName); ok {
		out = append(out, r)
	}
	if tier != "" {
		if r, ok := discord.RoleByName(roles, FreeAgentTierRoleName(tier)); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func findFold(values []string, name string) (string, bool) {
	for _, v := range values {
		if strings.EqualFold(v, name) {
			return v, true
		}
	}
	return "", false
}
