package transactionservice

import "errors"

var (
	ErrNoTransChannel = errors.New("transaction channel is not set")
	ErrAlreadyOnTeam  = errors.New("member is already on that team")
	ErrNotOnTeam      = errors.New("member is not on that team")
	ErrSameMember     = errors.New("a member cannot be traded for themselves")
	ErrFARoleMissing  = errors.New("free agent role not found")
)
