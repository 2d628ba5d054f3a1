package ticketservice

import "errors"

var (
	ErrUnknownKind     = errors.New("the ticket kind must be 'rules', 'numbers', or 'mods'")
	ErrCategoryNotSet  = errors.New("no category is set for that ticket kind")
)
