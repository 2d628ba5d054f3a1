package settingsservice

import (
	"context"
	"encoding/json"

	settingsdb "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory settingsdb.Repository with a call trace.
type FakeRepository struct {
	trace []string
	data  map[string]map[string]json.RawMessage

	GetFunc func(ctx context.Context, db bun.IDB, guildID, key string) (json.RawMessage, error)
	SetFunc func(ctx context.Context, db bun.IDB, guildID, key string, value json.RawMessage) error
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{data: map[string]map[string]json.RawMessage{}}
}

var _ settingsdb.Repository = (*FakeRepository)(nil)

func (f *FakeRepository) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) Get(ctx context.Context, db bun.IDB, guildID, key string) (json.RawMessage, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, guildID, key)
	}
	v, ok := f.data[guildID][key]
	if !ok {
		return nil, settingsdb.ErrNotFound
	}
	return v, nil
}

func (f *FakeRepository) Set(ctx context.Context, db bun.IDB, guildID, key string, value json.RawMessage) error {
	f.record("Set")
	if f.SetFunc != nil {
		return f.SetFunc(ctx, db, guildID, key, value)
	}
	if f.data[guildID] == nil {
		f.data[guildID] = map[string]json.RawMessage{}
	}
	f.data[guildID][key] = value
	return nil
}

func (f *FakeRepository) Delete(_ context.Context, _ bun.IDB, guildID, key string) error {
	f.record("Delete")
	delete(f.data[guildID], key)
	return nil
}

func (f *FakeRepository) List(_ context.Context, _ bun.IDB, guildID string) ([]settingsdb.GuildSetting, error) {
	f.record("List")
	var out []settingsdb.GuildSetting
	for k, v := range f.data[guildID] {
		out = append(out, settingsdb.GuildSetting{GuildID: guildID, Key: k, Value: v})
	}
	return out, nil
}

func (f *FakeRepository) DeleteGuild(_ context.Context, _ bun.IDB, guildID string) error {
	f.record("DeleteGuild")
	delete(f.data, guildID)
	return nil
}
