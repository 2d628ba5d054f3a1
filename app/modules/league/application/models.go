package leagueservice

import (
	"regexp"
	"strings"
)

const (
	CaptainRoleName   = "Captain"
	FreeAgentRoleName = "Free Agent"
)

// Team binds a team name to the franchise and tier roles its players hold.
type Team struct {
	Name            string `json:"name"`
	Tier            string `json:"tier"`
	FranchiseRoleID string `json:"franchise_role_id"`
	TierRoleID      string `json:"tier_role_id"`
	Franchise       string `json:"franchise"`
	GMName          string `json:"gm_name"`
}

// TeamRoles is the persisted role pair for a team.
type TeamRoles struct {
	FranchiseRoleID string `json:"franchise_role_id"`
	TierRoleID      string `json:"tier_role_id"`
	Tier            string `json:"tier"`
	Franchise       string `json:"franchise"`
	GMName          string `json:"gm_name"`
}

// Failure is the business failure payload for league operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }

var franchiseRolePattern = regexp.MustCompile(`^(.+?)\s*\((.+)\)$`)

// ParseFranchiseRole splits a "Franchise Name (GM Name)" role name.
func ParseFranchiseRole(roleName string) (franchise, gm string, ok bool) {
	m := franchiseRolePattern.FindStringSubmatch(strings.TrimSpace(roleName))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// FreeAgentTierRoleName is the per-tier free agent role, e.g. "PremierFA".
func FreeAgentTierRoleName(tier string) string {
	return tier + "FA"
}

// Nickname renders a member nickname with a franchise prefix.
func Nickname(prefix, name string) string {
	if i := strings.Index(name, " | "); i >= 0 {
		name = name[i+3:]
	}
	if prefix == "" {
		return name
	}
	return prefix + " | " + name
}
