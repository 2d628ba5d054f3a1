// Package settingstest provides an in-memory settings store for tests.
package settingstest

import (
	"context"
	"encoding/json"
	"sync"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
)

// Store keeps JSON-encoded values in memory so tests see the same encoding
// behaviour as the real store.
type Store struct {
	mu       sync.Mutex
	data     map[string]map[string]json.RawMessage
	loadErrs map[string]error
}

func NewStore() *Store {
	return &Store{
		data:     map[string]map[string]json.RawMessage{},
		loadErrs: map[string]error{},
	}
}

// FailLoad makes every Load of key return err. A nil err clears it.
func (s *Store) FailLoad(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.loadErrs, key)
		return
	}
	s.loadErrs[key] = err
}

var _ settingsservice.Store = (*Store)(nil)

func (s *Store) Load(_ context.Context, guildID, key string, dest any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[guildID][key]
	loadErr := s.loadErrs[key]
	s.mu.Unlock()
	if loadErr != nil {
		return false, loadErr
	}
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *Store) Save(_ context.Context, guildID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[guildID] == nil {
		s.data[guildID] = map[string]json.RawMessage{}
	}
	s.data[guildID][key] = raw
	return nil
}

func (s *Store) Clear(_ context.Context, guildID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[guildID], key)
	return nil
}

// MustSet is a test shorthand for Save.
func (s *Store) MustSet(guildID, key string, value any) {
	if err := s.Save(context.Background(), guildID, key, value); err != nil {
		panic(err)
	}
}
