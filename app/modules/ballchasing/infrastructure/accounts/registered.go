package bcaccounts

import (
	"context"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/elliotchance/pie/v2"
)

// Registered keeps accounts members registered themselves, per guild.
type Registered struct {
	store settingsservice.Store
}

func NewRegistered(store settingsservice.Store) *Registered {
	return &Registered{store: store}
}

var _ Lookup = (*Registered)(nil)

func (r *Registered) all(ctx context.Context, guildID string) (map[string][]bcdomain.Account, error) {
	return settingsservice.Get(ctx, r.store, guildID, settingsservice.KeyPlayerAccounts, map[string][]bcdomain.Account{})
}

func (r *Registered) Accounts(ctx context.Context, guildID, discordID string) ([]bcdomain.Account, error) {
	all, err := r.all(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return all[discordID], nil
}

// Register adds an account for the member and returns their accounts.
func (r *Registered) Register(ctx context.Context, guildID, discordID string, account bcdomain.Account) ([]bcdomain.Account, error) {
	account, err := Normalize(account)
	if err != nil {
		return nil, err
	}
	all, err := r.all(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if !pie.Contains(all[discordID], account) {
		all[discordID] = append(all[discordID], account)
	}
	if err := settingsservice.Set(ctx, r.store, guildID, settingsservice.KeyPlayerAccounts, all); err != nil {
		return nil, err
	}
	return all[discordID], nil
}

// Unregister removes an account and returns the member's remaining accounts.
func (r *Registered) Unregister(ctx context.Context, guildID, discordID string, account bcdomain.Account) ([]bcdomain.Account, error) {
	if n, err := Normalize(account); err == nil {
		account = n
	}
	all, err := r.all(ctx, guildID)
	if err != nil {
		return nil, err
	}
	remaining := pie.Filter(all[discordID], func(a bcdomain.Account) bool { return a != account })
	if len(remaining) == 0 {
		delete(all, discordID)
	} else {
		all[discordID] = remaining
	}
	if err := settingsservice.Set(ctx, r.store, guildID, settingsservice.KeyPlayerAccounts, all); err != nil {
		return nil, err
	}
	return remaining, nil
}
