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

func (s *LeagueService) teamRoles(ctx context.Context, guildID string) (map[string]TeamRoles, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyTeamRoles, map[string]TeamRoles{})
}

// Teams lists every registered team ordered by tier then name.
func (s *LeagueService) Teams(ctx context.Context, guildID string) ([]Team, error) {
	names, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyTeams, []string{})
	if err != nil {
		return nil, err
	}
	roles, err := s.teamRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}

	teams := make([]Team, 0, len(names))
	for _, name := range names {
		r, ok := roles[name]
		if !ok {
			continue
		}
		teams = append(teams, toTeam(name, r))
	}
	return pie.SortUsing(teams, func(a, b Team) bool {
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		return a.Name < b.Name
	}), nil
}

// TeamByName resolves a team case-insensitively.
func (s *LeagueService) TeamByName(ctx context.Context, guildID, name string) (Team, error) {
	teams, err := s.Teams(ctx, guildID)
	if err != nil {
		return Team{}, err
	}
	for _, t := range teams {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Team{}, fmt.Errorf("%w: %s", ErrTeamNotFound, name)
}

// AddTeam registers a team for the franchise run by gmName in the given tier.
func (s *LeagueService) AddTeam(ctx context.Context, guildID, teamName, gmName, tier string) (LeagueResult[Team], error) {
	return withTelemetry(s, ctx, "AddTeam", guildID, func(ctx context.Context) (LeagueResult[Team], error) {
		teamName = strings.TrimSpace(teamName)
		tiers, err := s.Tiers(ctx, guildID)
		if err != nil {
			return LeagueResult[Team]{}, err
		}
		tierName, ok := findFold(tiers, tier)
		if !ok {
			return fail[Team](fmt.Errorf("%w: %s", ErrTierNotFound, tier)), nil
		}
		if _, err := s.TeamByName(ctx, guildID, teamName); err == nil {
			return fail[Team](fmt.Errorf("%w: %s", ErrTeamExists, teamName)), nil
		}

		roles, err := s.discord.Roles(ctx, guildID)
		if err != nil {
			return LeagueResult[Team]{}, err
		}
		tierRole, ok := discord.RoleByName(roles, tierName)
		if !ok {
			return fail[Team](fmt.Errorf("%w: %s", ErrTierRoleMissing, tierName)), nil
		}
		franchiseRole, franchise, gm, ok := franchiseRoleForGM(roles, gmName)
		if !ok {
			return fail[Team](fmt.Errorf("%w: %s", ErrFranchiseNotFound, gmName)), nil
		}

		tr := TeamRoles{
			FranchiseRoleID: franchiseRole.ID,
			TierRoleID:      tierRole.ID,
			Tier:            tierName,
			Franchise:       franchise,
			GMName:          gm,
		}
		if err := s.saveTeam(ctx, guildID, teamName, tr); err != nil {
			return LeagueResult[Team]{}, err
		}
		return results.SuccessResult[Team, Failure](toTeam(teamName, tr)), nil
	})
}

// RemoveTeam deletes a team registration. Roles are left untouched.
func (s *LeagueService) RemoveTeam(ctx context.Context, guildID, teamName string) (LeagueResult[Team], error) {
	return withTelemetry(s, ctx, "RemoveTeam", guildID, func(ctx context.Context) (LeagueResult[Team], error) {
		team, err := s.TeamByName(ctx, guildID, teamName)
		if err != nil {
			return fail[Team](err), nil
		}
		if err := s.deleteTeam(ctx, guildID, team.Name); err != nil {
			return LeagueResult[Team]{}, err
		}
		return results.SuccessResult[Team, Failure](team), nil
	})
}

func (s *LeagueService) saveTeam(ctx context.Context, guildID, name string, tr TeamRoles) error {
	names, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyTeams, []string{})
	if err != nil {
		return err
	}
	roles, err := s.teamRoles(ctx, guildID)
	if err != nil {
		return err
	}
	roles[name] = tr
	if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTeamRoles, roles); err != nil {
		return err
	}
	return settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTeams, append(names, name))
}

func (s *LeagueService) deleteTeam(ctx context.Context, guildID, name string) error {
	names, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyTeams, []string{})
	if err != nil {
		return err
	}
	roles, err := s.teamRoles(ctx, guildID)
	if err != nil {
		return err
	}
	delete(roles, name)
	if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTeamRoles, roles); err != nil {
		return err
	}
	names = pie.Filter(names, func(n string) bool { return n != name })
	return settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTeams, names)
}

// TeamsForMember returns the teams whose franchise and tier roles the member holds.
func (s *LeagueService) TeamsForMember(ctx context.Context, guildID string, member discord.Member) ([]Team, error) {
	teams, err := s.Teams(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(teams, func(t Team) bool {
		return member.HasRole(t.FranchiseRoleID) && member.HasRole(t.TierRoleID)
	}), nil
}

// TeamForUser resolves the single team of a user, or ErrNoTeamForMember.
func (s *LeagueService) TeamForUser(ctx context.Context, guildID, userID string) (Team, discord.Member, error) {
	member, err := s.discord.Member(ctx, guildID, userID)
	if err != nil {
		return Team{}, discord.Member{}, err
	}
	teams, err := s.TeamsForMember(ctx, guildID, member)
	if err != nil {
		return Team{}, member, err
	}
	if len(teams) == 0 {
		return Team{}, member, ErrNoTeamForMember
	}
	return teams[0], member, nil
}

// FranchiseTeams returns every team sharing the franchise role.
func (s *LeagueService) FranchiseTeams(ctx context.Context, guildID, franchiseRoleID string) ([]Team, error) {
	teams, err := s.Teams(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return pie.Filter(teams, func(t Team) bool { return t.FranchiseRoleID == franchiseRoleID }), nil
}

func franchiseRoleForGM(roles []discord.Role, gmName string) (discord.Role, string, string, bool) {
	for _, r := range roles {
		franchise, gm, ok := ParseFranchiseRole(r.Name)
		if ok && strings.EqualFold(gm, strings.TrimSpace(gmName)) {
			return r, franchise, gm, true
		}
	}
	return discord.Role{}, "", "", false
}

func toTeam(name string, r TeamRoles) Team {
	return Team{
		Name:            name,
		Tier:            r.Tier,
		FranchiseRoleID: r.FranchiseRoleID,
		TierRoleID:      r.TierRoleID,
		Franchise:       r.Franchise,
		GMName:          r.GMName,
	}
}
