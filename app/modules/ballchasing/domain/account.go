package bcdomain

import "strings"

// Account platforms the replay host can be searched by.
const (
	PlatformSteam = "steam"
	PlatformEpic  = "epic"
	PlatformXbox  = "xbox"
	PlatformPS4   = "ps4"
)

// Account is one of a member's game accounts.
type Account struct {
	Platform string `json:"platform"`
	ID       string `json:"id"`
}

// UploaderID is the value the search API accepts in its uploader filter.
// Only Steam accounts upload, so other platforms return false.
func (a Account) UploaderID() (string, bool) {
	if strings.EqualFold(a.Platform, PlatformSteam) && a.ID != "" {
		return a.ID, true
	}
	return "", false
}

// PlayerFilter is the "platform:id" form accepted by the player-id filter.
func (a Account) PlayerFilter() string {
	return strings.ToLower(a.Platform) + ":" + a.ID
}
