package bcservice

import (
	"context"
	"iter"
	"sync"

	bcdomain "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/domain"
	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
)

// API is the ballchasing surface the service uses.
type API interface {
	Ping(ctx context.Context) (bcclient.Identity, error)
	SearchReplays(ctx context.Context, p bcclient.SearchParams) iter.Seq2[bcdomain.Replay, error]
	Group(ctx context.Context, groupID string) (bcclient.Group, error)
	EnsureChildGroup(ctx context.Context, parentID, name string) (bcclient.Group, error)
	Upload(ctx context.Context, fileName string, data []byte, groupID string) (bcclient.UploadResult, error)
	PatchReplay(ctx context.Context, replayID string, patch bcclient.ReplayPatch) error
	Download(ctx context.Context, replayID string) ([]byte, error)
}

var _ API = (*bcclient.Client)(nil)

// ClientFactory builds an API for a token.
type ClientFactory func(token string) API

// Registry holds one API session per guild, built lazily from the guild's
// stored auth token.
type Registry struct {
	store   settingsservice.Store
	factory ClientFactory

	mu       sync.Mutex
	sessions map[string]session
}

type session struct {
	token string
	api   API
}

func NewRegistry(store settingsservice.Store, factory ClientFactory) *Registry {
	return &Registry{
		store:    store,
		factory:  factory,
		sessions: map[string]session{},
	}
}

// Client returns the guild's session, or ErrNoAuthToken when none is stored.
func (r *Registry) Client(ctx context.Context, guildID string) (API, error) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	r.mu.Unlock()
	if ok {
		return s.api, nil
	}

	token, err := settingsservice.GetString(ctx, r.store, guildID, settingsservice.KeyAuthToken)
	if err != nil {
		return nil, err
	}
	if token == nil || *token == "" {
		return nil, ErrNoAuthToken
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		return s.api, nil
	}
	s = session{token: *token, api: r.factory(*token)}
	r.sessions[guildID] = s
	return s.api, nil
}

// Open builds a session for a token without storing it.
func (r *Registry) Open(token string) API {
	return r.factory(token)
}

// Forget drops the guild's session.
func (r *Registry) Forget(guildID string) {
	r.mu.Lock()
	delete(r.sessions, guildID)
	r.mu.Unlock()
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
