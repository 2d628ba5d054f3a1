package settingsdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a guild has never written the key.
var ErrNotFound = errors.New("setting not found")

// Repository defines the contract for guild setting persistence.
// All methods take the bun.IDB to run against so callers can compose them
// inside a transaction.
type Repository interface {
	// Get returns the stored JSON for the key, or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, guildID, key string) (json.RawMessage, error)
	// Set upserts the key.
	Set(ctx context.Context, db bun.IDB, guildID, key string, value json.RawMessage) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, db bun.IDB, guildID, key string) error
	// List returns every key stored for the guild.
	List(ctx context.Context, db bun.IDB, guildID string) ([]GuildSetting, error)
	// DeleteGuild removes every key stored for the guild.
	DeleteGuild(ctx context.Context, db bun.IDB, guildID string) error
}
