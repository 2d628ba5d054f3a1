package settingsdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl is the bun-backed Repository.
type Impl struct{}

func NewRepository() *Impl { return &Impl{} }

var _ Repository = (*Impl)(nil)

func (r *Impl) Get(ctx context.Context, db bun.IDB, guildID, key string) (json.RawMessage, error) {
	var row GuildSetting
	err := db.NewSelect().
		Model(&row).
		Where("guild_id = ?", guildID).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return row.Value, nil
}

func (r *Impl) Set(ctx context.Context, db bun.IDB, guildID, key string, value json.RawMessage) error {
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	row := &GuildSetting{
		GuildID:   guildID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *Impl) Delete(ctx context.Context, db bun.IDB, guildID, key string) error {
	_, err := db.NewDelete().
		Model((*GuildSetting)(nil)).
		Where("guild_id = ?", guildID).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB, guildID string) ([]GuildSetting, error) {
	var rows []GuildSetting
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return rows, nil
}

func (r *Impl) DeleteGuild(ctx context.Context, db bun.IDB, guildID string) error {
	_, err := db.NewDelete().
		Model((*GuildSetting)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete guild settings: %w", err)
	}
	return nil
}
