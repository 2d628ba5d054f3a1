package scheduleservice

import "errors"

var (
	ErrInvalidMatchDate = errors.New("invalid match date")
	ErrInvalidMatchDay  = errors.New("match day must be positive")
	ErrSameTeam         = errors.New("a team cannot play itself")
	ErrTierMismatch     = errors.New("teams are not in the same tier")
	ErrMatchNotFound    = errors.New("no match found")
	ErrLobbyExhausted   = errors.New("could not generate a unique lobby")
)
