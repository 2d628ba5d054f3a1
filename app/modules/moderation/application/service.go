package moderationservice

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// ModerationService screens joining members for bot accounts and greets the
// ones that pass.
type ModerationService struct {
	store   settingsservice.Store
	discord discord.Client
	logger  *slog.Logger
	tel     observability.Telemetry
	now     func() time.Time

	mu     sync.Mutex
	recent map[string]map[string]*joinWindow
}

type Option func(*ModerationService)

func WithClock(now func() time.Time) Option {
	return func(s *ModerationService) { s.now = now }
}

func NewModerationService(
	store settingsservice.Store,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *ModerationService {
	s := &ModerationService{
		store:   store,
		discord: dc,
		logger:  logger,
		tel: observability.Telemetry{
			Service: "ModerationService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
		now:    time.Now,
		recent: map[string]map[string]*joinWindow{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModerationResult is the result shape of moderation operations.
type ModerationResult[S any] = results.OperationResult[S, Failure]

func withTelemetry[S any](
	s *ModerationService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (ModerationResult[S], error),
) (ModerationResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) ModerationResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// SetBotDetection turns join screening on or off.
func (s *ModerationService) SetBotDetection(ctx context.Context, guildID string, enabled bool) (ModerationResult[bool], error) {
	return withTelemetry(s, ctx, "SetBotDetection", guildID, func(ctx context.Context) (ModerationResult[bool], error) {
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyBotDetection, enabled); err != nil {
			return ModerationResult[bool]{}, err
		}
		if !enabled {
			s.ForgetGuild(guildID)
		}
		return results.SuccessResult[bool, Failure](enabled), nil
	})
}

func (s *ModerationService) BotDetection(ctx context.Context, guildID string) (bool, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyBotDetection, false)
}

// SetWelcomeMessage sets the message posted in the system channel when a
// member joins. It may use {member} and {guild}. Nil unsets it.
func (s *ModerationService) SetWelcomeMessage(ctx context.Context, guildID string, message *string) (ModerationResult[*string], error) {
	return withTelemetry(s, ctx, "SetWelcomeMessage", guildID, func(ctx context.Context) (ModerationResult[*string], error) {
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyWelcomeMessage, message); err != nil {
			return ModerationResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](message), nil
	})
}

// SetEventLogChannel sets where kicks are logged. Nil unsets it.
func (s *ModerationService) SetEventLogChannel(ctx context.Context, guildID string, channelID *string) (ModerationResult[*string], error) {
	return withTelemetry(s, ctx, "SetEventLogChannel", guildID, func(ctx context.Context) (ModerationResult[*string], error) {
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyEventLogChannel, channelID); err != nil {
			return ModerationResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](channelID), nil
	})
}

// BlacklistedNames returns the lower-cased name fragments that flag a new
// account.
func (s *ModerationService) BlacklistedNames(ctx context.Context, guildID string) ([]string, error) {
	return settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyBlacklistNames, slices.Clone(DefaultBlacklist))
}

func (s *ModerationService) BlacklistName(ctx context.Context, guildID, name string) (ModerationResult[[]string], error) {
	return withTelemetry(s, ctx, "BlacklistName", guildID, func(ctx context.Context) (ModerationResult[[]string], error) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return fail[[]string](ErrEmptyName), nil
		}
		names, err := s.BlacklistedNames(ctx, guildID)
		if err != nil {
			return ModerationResult[[]string]{}, err
		}
		if slices.Contains(names, name) {
			return fail[[]string](ErrAlreadyBlacklisted), nil
		}
		names = append(names, name)
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyBlacklistNames, names); err != nil {
			return ModerationResult[[]string]{}, err
		}
		return results.SuccessResult[[]string, Failure](names), nil
	})
}

func (s *ModerationService) UnblacklistName(ctx context.Context, guildID, name string) (ModerationResult[[]string], error) {
	return withTelemetry(s, ctx, "UnblacklistName", guildID, func(ctx context.Context) (ModerationResult[[]string], error) {
		name = strings.ToLower(strings.TrimSpace(name))
		names, err := s.BlacklistedNames(ctx, guildID)
		if err != nil {
			return ModerationResult[[]string]{}, err
		}
		i := slices.Index(names, name)
		if i < 0 {
			return fail[[]string](ErrNotBlacklisted), nil
		}
		names = slices.Delete(names, i, i+1)
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyBlacklistNames, names); err != nil {
			return ModerationResult[[]string]{}, err
		}
		return results.SuccessResult[[]string, Failure](names), nil
	})
}

// WhitelistedUsers returns the users exempt from join screening.
func (s *ModerationService) WhitelistedUsers(ctx context.Context, guildID string) ([]string, error) {
	return settingsservice.Get[[]string](ctx, s.store, guildID, settingsservice.KeyWhitelistUsers, nil)
}

func (s *ModerationService) WhitelistUser(ctx context.Context, guildID, userID string) (ModerationResult[[]string], error) {
	return withTelemetry(s, ctx, "WhitelistUser", guildID, func(ctx context.Context) (ModerationResult[[]string], error) {
		users, err := s.WhitelistedUsers(ctx, guildID)
		if err != nil {
			return ModerationResult[[]string]{}, err
		}
		if slices.Contains(users, userID) {
			return fail[[]string](ErrAlreadyWhitelisted), nil
		}
		users = append(users, userID)
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyWhitelistUsers, users); err != nil {
			return ModerationResult[[]string]{}, err
		}
		return results.SuccessResult[[]string, Failure](users), nil
	})
}

func (s *ModerationService) UnwhitelistUser(ctx context.Context, guildID, userID string) (ModerationResult[[]string], error) {
	return withTelemetry(s, ctx, "UnwhitelistUser", guildID, func(ctx context.Context) (ModerationResult[[]string], error) {
		users, err := s.WhitelistedUsers(ctx, guildID)
		if err != nil {
			return ModerationResult[[]string]{}, err
		}
		i := slices.Index(users, userID)
		if i < 0 {
			return fail[[]string](ErrNotWhitelisted), nil
		}
		users = slices.Delete(users, i, i+1)
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyWhitelistUsers, users); err != nil {
			return ModerationResult[[]string]{}, err
		}
		return results.SuccessResult[[]string, Failure](users), nil
	})
}

// RecentJoins lists the usernames still inside the spam join window.
func (s *ModerationService) RecentJoins(guildID string) []RecentName {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(guildID)
	var out []RecentName
	for _, w := range s.recent[guildID] {
		out = append(out, RecentName{Name: w.members[0].username, Joins: len(w.members)})
	}
	slices.SortFunc(out, func(a, b RecentName) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// ForgetGuild drops the join window of a guild.
func (s *ModerationService) ForgetGuild(guildID string) {
	s.mu.Lock()
	delete(s.recent, guildID)
	s.mu.Unlock()
}
