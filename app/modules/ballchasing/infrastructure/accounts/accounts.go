// Package bcaccounts resolves guild members to their game accounts.
package bcaccounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	"github.com/elliotchance/pie/v2"
	"github.com/leighmacdonald/steamid/v2/steamid"
)

var (
	ErrInvalidAccount  = errors.New("invalid account")
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Lookup returns a member's accounts.
type Lookup interface {
	Accounts(ctx context.Context, guildID, discordID string) ([]bcdomain.Account, error)
}

var platforms = []string{
	bcdomain.PlatformSteam,
	bcdomain.PlatformEpic,
	bcdomain.PlatformXbox,
	bcdomain.PlatformPS4,
}

// Normalize validates an account and returns it in canonical form. Steam
// accounts must be valid 64-bit Steam IDs.
func Normalize(a bcdomain.Account) (bcdomain.Account, error) {
	platform := strings.ToLower(strings.TrimSpace(a.Platform))
	id := strings.TrimSpace(a.ID)
	if !pie.Contains(platforms, platform) {
		return bcdomain.Account{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, a.Platform)
	}
	if id == "" {
		return bcdomain.Account{}, fmt.Errorf("%w: empty id", ErrInvalidAccount)
	}
	if platform == bcdomain.PlatformSteam {
		sid, err := steamid.StringToSID64(id)
		if err != nil || !sid.Valid() {
			return bcdomain.Account{}, fmt.Errorf("%w: %q is not a steam id", ErrInvalidAccount, id)
		}
		id = sid.String()
	}
	return bcdomain.Account{Platform: platform, ID: id}, nil
}

// normalizeAll keeps the valid, distinct accounts in order.
func normalizeAll(accounts []bcdomain.Account) []bcdomain.Account {
	var out []bcdomain.Account
	for _, a := range accounts {
		if n, err := Normalize(a); err == nil && !pie.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Chain merges several lookups. A failing lookup does not hide the accounts
// the others found; its error is joined into the result.
type Chain []Lookup

func (c Chain) Accounts(ctx context.Context, guildID, discordID string) ([]bcdomain.Account, error) {
	var (
		all  []bcdomain.Account
		errs []error
	)
	for _, l := range c {
		found, err := l.Accounts(ctx, guildID, discordID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, found...)
	}
	return normalizeAll(all), errors.Join(errs...)
}
