package leagueservice

import "errors"

var (
	ErrTierNotFound      = errors.New("tier not found")
	ErrTierExists        = errors.New("tier already exists")
	ErrTierRoleMissing   = errors.New("no role exists for tier")
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamExists        = errors.New("team already exists")
	ErrFranchiseNotFound = errors.New("no franchise role found for general manager")
	ErrNoTeamForMember   = errors.New("member is not on a team")
)
