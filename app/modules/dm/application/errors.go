package dmservice

import "errors"

var (
	ErrNoRecipients   = errors.New("no members hold that role")
	ErrEmptyMessage   = errors.New("message has no content")
	ErrNoRecipient    = errors.New("message has no recipient")
	ErrReopenDisabled = errors.New("no DM failed role is configured")
)
