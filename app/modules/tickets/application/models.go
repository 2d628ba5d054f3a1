package ticketservice

import "strings"

// Kind routes a ticket to the staff group that handles it.
type Kind string

const (
	KindRules   Kind = "rules"
	KindNumbers Kind = "numbers"
	KindMods    Kind = "mods"
)

// Kinds lists every ticket kind in display order.
var Kinds = []Kind{KindRules, KindNumbers, KindMods}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// Route is where a kind of ticket goes and who is pinged for it.
type Route struct {
	Kind       Kind
	CategoryID string
	RoleID     string
}

// Assignment is a ticket channel moved to its route.
type Assignment struct {
	ChannelID string
	Route
}

// Failure is the business failure payload for ticket operations.
type Failure struct {
	Err error
}

func (f Failure) Error() string { return f.Err.Error() }
