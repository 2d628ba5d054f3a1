package moderationservice

import "errors"

var (
	ErrEmptyName          = errors.New("name must not be empty")
	ErrAlreadyBlacklisted = errors.New("name is already blacklisted")
	ErrNotBlacklisted     = errors.New("name is not blacklisted")
	ErrAlreadyWhitelisted = errors.New("user is already whitelisted")
	ErrNotWhitelisted     = errors.New("user is not whitelisted")
)
