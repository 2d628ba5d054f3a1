package settingsservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	settingsdb "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Store is the guild-scoped key/value view other modules depend on.
// A value written with Save is read back unchanged by Load, including nil.
type Store interface {
	// Load decodes the key into dest. It reports false, leaving dest
	// untouched, when the guild never wrote the key.
	Load(ctx context.Context, guildID, key string, dest any) (bool, error)
	Save(ctx context.Context, guildID, key string, value any) error
	Clear(ctx context.Context, guildID, key string) error
}

// Service implements Store on top of the settings repository with a
// per-guild read cache.
type Service struct {
	repo   settingsdb.Repository
	db     bun.IDB
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]map[string]json.RawMessage
}

func NewService(repo settingsdb.Repository, db bun.IDB, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  map[string]map[string]json.RawMessage{},
	}
}

var _ Store = (*Service)(nil)

func (s *Service) Load(ctx context.Context, guildID, key string, dest any) (bool, error) {
	raw, ok, err := s.raw(ctx, guildID, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return true, nil
}

func (s *Service) Save(ctx context.Context, guildID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	if err := s.repo.Set(ctx, s.db, guildID, key, raw); err != nil {
		return err
	}
	s.put(guildID, key, raw)
	s.logger.DebugContext(ctx, "Guild setting saved",
		slog.String("guild_id", guildID),
		slog.String("key", key),
	)
	return nil
}

func (s *Service) Clear(ctx context.Context, guildID, key string) error {
	if err := s.repo.Delete(ctx, s.db, guildID, key); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache[guildID], key)
	s.mu.Unlock()
	return nil
}

// Forget drops the cached view of a guild. Persisted values are kept.
func (s *Service) Forget(guildID string) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}

func (s *Service) raw(ctx context.Context, guildID, key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	raw, ok := s.cache[guildID][key]
	s.mu.RUnlock()
	if ok {
		return raw, true, nil
	}

	raw, err := s.repo.Get(ctx, s.db, guildID, key)
	if err != nil {
		if errors.Is(err, settingsdb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	s.put(guildID, key, raw)
	return raw, true, nil
}

func (s *Service) put(guildID, key string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.cache[guildID]
	if !ok {
		g = map[string]json.RawMessage{}
		s.cache[guildID] = g
	}
	g[key] = raw
}

// Get loads a typed value, returning def when the key was never written.
func Get[T any](ctx context.Context, st Store, guildID, key string, def T) (T, error) {
	var v T
	ok, err := st.Load(ctx, guildID, key, &v)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Set stores a typed value.
func Set[T any](ctx context.Context, st Store, guildID, key string, v T) error {
	return st.Save(ctx, guildID, key, v)
}

// GetString loads an optional string setting; nil means unset.
func GetString(ctx context.Context, st Store, guildID, key string) (*string, error) {
	return Get[*string](ctx, st, guildID, key, nil)
}
