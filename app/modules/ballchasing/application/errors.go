package bcservice

import "errors"

var (
	ErrNoAuthToken        = errors.New("a ballchasing auth token has not been set for this guild")
	ErrInvalidAuthToken   = errors.New("the auth token provided is invalid")
	ErrNoTopLevelGroup    = errors.New("a top level ballchasing group has not been set for this guild")
	ErrGroupNotFound      = errors.New("ballchasing group not found")
	ErrGroupOwnerMismatch = errors.New("ballchasing group creator must be consistent with the registered auth token")
	ErrMatchNotFound      = errors.New("no match found")
	ErrAlreadyReported    = errors.New("match has already been reported")
	ErrNoReplaysFound     = errors.New("no matching replays found on ballchasing")
	ErrIncompleteSet      = errors.New("could not find enough replays to complete the match")
)
