package checkinservice

import "errors"

var (
	ErrNoMatchDay       = errors.New("the current match day is not set")
	ErrNotFreeAgent     = errors.New("only free agents are allowed to check in; if you are a free agent and cannot check in, message an admin")
	ErrTierUnknown      = errors.New("your tier could not be determined; if you are in the league, contact an admin")
	ErrAlreadyCheckedIn = errors.New("you have already checked in for this match day")
	ErrNotCheckedIn     = errors.New("you are not checked in for this match day")
)
