package checkinservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// CheckInService keeps the per match day list of free agents available to
// play.
type CheckInService struct {
	store   settingsservice.Store
	league  League
	matches MatchDays
	discord discord.Client
	logger  *slog.Logger
	tel     observability.Telemetry

	// serializes read-modify-write of the board
	mu sync.Mutex
}

func NewCheckInService(
	store settingsservice.Store,
	league League,
	matches MatchDays,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *CheckInService {
	return &CheckInService{
		store:   store,
		league:  league,
		matches: matches,
		discord: dc,
		logger:  logger,
		tel: observability.Telemetry{
			Service: "CheckInService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
	}
}

// CheckInResult is the result shape of check-in operations.
type CheckInResult[S any] = results.OperationResult[S, Failure]

func withTelemetry[S any](
	s *CheckInService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (CheckInResult[S], error),
) (CheckInResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) CheckInResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// CheckIn marks the member available for the current match day in the tier
// of their free agent role.
func (s *CheckInService) CheckIn(ctx context.Context, guildID, userID string) (CheckInResult[CheckIn], error) {
	return withTelemetry(s, ctx, "CheckIn", guildID, func(ctx context.Context) (CheckInResult[CheckIn], error) {
		day, err := s.matchDay(ctx, guildID, 0)
		if err != nil {
			return businessOr[CheckIn](err)
		}
		tier, err := s.memberTier(ctx, guildID, userID, false)
		if err != nil {
			return CheckInResult[CheckIn]{}, err
		}
		if tier == "" {
			return fail[CheckIn](ErrNotFreeAgent), nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		b, err := s.board(ctx, guildID)
		if err != nil {
			return CheckInResult[CheckIn]{}, err
		}
		ids := b.tier(day, tier)
		if slices.Contains(ids, userID) {
			return fail[CheckIn](ErrAlreadyCheckedIn), nil
		}
		b.setTier(day, tier, append(ids, userID))
		if err := s.save(ctx, guildID, b); err != nil {
			return CheckInResult[CheckIn]{}, err
		}

		s.logger.InfoContext(ctx, "Free agent checked in",
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.String("tier", tier),
			slog.Int("match_day", day),
		)
		return results.SuccessResult[CheckIn, Failure](CheckIn{UserID: userID, MatchDay: day, Tier: tier}), nil
	})
}

// CheckOut removes the member from the current match day. Members who lost
// their free agent role are found through their tier role.
func (s *CheckInService) CheckOut(ctx context.Context, guildID, userID string) (CheckInResult[CheckIn], error) {
	return withTelemetry(s, ctx, "CheckOut", guildID, func(ctx context.Context) (CheckInResult[CheckIn], error) {
		day, err := s.matchDay(ctx, guildID, 0)
		if err != nil {
			return businessOr[CheckIn](err)
		}
		tier, err := s.memberTier(ctx, guildID, userID, true)
		if err != nil {
			return CheckInResult[CheckIn]{}, err
		}
		if tier == "" {
			return fail[CheckIn](ErrTierUnknown), nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		b, err := s.board(ctx, guildID)
		if err != nil {
			return CheckInResult[CheckIn]{}, err
		}
		ids := b.tier(day, tier)
		i := slices.Index(ids, userID)
		if i < 0 {
			return fail[CheckIn](ErrNotCheckedIn), nil
		}
		b.setTier(day, tier, slices.Delete(ids, i, i+1))
		if err := s.save(ctx, guildID, b); err != nil {
			return CheckInResult[CheckIn]{}, err
		}
		return results.SuccessResult[CheckIn, Failure](CheckIn{UserID: userID, MatchDay: day, Tier: tier}), nil
	})
}

// Availability lists the checked in members of a tier who still hold a free
// agent role, in check-in order. A zero matchDay means the current one.
func (s *CheckInService) Availability(ctx context.Context, guildID, tierName string, matchDay int) (CheckInResult[Availability], error) {
	return withTelemetry(s, ctx, "Availability", guildID, func(ctx context.Context) (CheckInResult[Availability], error) {
		day, tier, err := s.resolve(ctx, guildID, tierName, matchDay)
		if err != nil {
			return businessOr[Availability](err)
		}

		b, err := s.board(ctx, guildID)
		if err != nil {
			return CheckInResult[Availability]{}, err
		}
		ids := b.tier(day, tier)
		out := Availability{Tier: tier, MatchDay: day}
		if len(ids) == 0 {
			return results.SuccessResult[Availability, Failure](out), nil
		}

		roles, err := s.discord.Roles(ctx, guildID)
		if err != nil {
			return CheckInResult[Availability]{}, err
		}
		tiers, err := s.league.Tiers(ctx, guildID)
		if err != nil {
			return CheckInResult[Availability]{}, err
		}
		members, err := s.discord.Members(ctx, guildID)
		if err != nil {
			return CheckInResult[Availability]{}, err
		}
		byID := make(map[string]discord.Member, len(members))
		for _, m := range members {
			byID[m.ID] = m
		}
		permFA, hasPermFA := discord.RoleByName(roles, PermFARoleName)

		for _, id := range ids {
			m, ok := byID[id]
			if !ok || freeAgentTier(roles, tiers, m) == "" {
				continue
			}
			out.Players = append(out.Players, Player{
				ID:        m.ID,
				Name:      m.DisplayName(),
				Permanent: hasPermFA && m.HasRole(permFA.ID),
			})
		}
		return results.SuccessResult[Availability, Failure](out), nil
	})
}

// ClearAvailability empties one tier of a match day, or the whole match day
// when tierName is empty. A zero matchDay means the current one.
func (s *CheckInService) ClearAvailability(ctx context.Context, guildID, tierName string, matchDay int) (CheckInResult[Cleared], error) {
	return withTelemetry(s, ctx, "ClearAvailability", guildID, func(ctx context.Context) (CheckInResult[Cleared], error) {
		day, tier, err := s.resolve(ctx, guildID, tierName, matchDay)
		if err != nil {
			return businessOr[Cleared](err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		b, err := s.board(ctx, guildID)
		if err != nil {
			return CheckInResult[Cleared]{}, err
		}
		if tier == "" {
			delete(b, dayKey(day))
		} else {
			b.setTier(day, tier, nil)
		}
		if err := s.save(ctx, guildID, b); err != nil {
			return CheckInResult[Cleared]{}, err
		}
		return results.SuccessResult[Cleared, Failure](Cleared{MatchDay: day, Tier: tier}), nil
	})
}

// ClearAllAvailability drops every check-in of every match day.
func (s *CheckInService) ClearAllAvailability(ctx context.Context, guildID string) (CheckInResult[struct{}], error) {
	return withTelemetry(s, ctx, "ClearAllAvailability", guildID, func(ctx context.Context) (CheckInResult[struct{}], error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.store.Clear(ctx, guildID, settingsservice.KeyCheckIns); err != nil {
			return CheckInResult[struct{}]{}, err
		}
		return results.SuccessResult[struct{}, Failure](struct{}{}), nil
	})
}

// resolve fills in the current match day and the canonical tier name.
func (s *CheckInService) resolve(ctx context.Context, guildID, tierName string, matchDay int) (int, string, error) {
	day, err := s.matchDay(ctx, guildID, matchDay)
	if err != nil {
		return 0, "", err
	}
	if tierName == "" {
		return day, "", nil
	}
	tiers, err := s.league.Tiers(ctx, guildID)
	if err != nil {
		return 0, "", err
	}
	for _, t := range tiers {
		if strings.EqualFold(t, tierName) {
			return day, t, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %s", leagueservice.ErrTierNotFound, tierName)
}

// matchDay returns day, or the current match day when day is zero.
func (s *CheckInService) matchDay(ctx context.Context, guildID string, day int) (int, error) {
	if day > 0 {
		return day, nil
	}
	day, err := s.matches.MatchDay(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if day == 0 {
		return 0, ErrNoMatchDay
	}
	return day, nil
}

// memberTier finds the tier whose free agent role the member holds. With
// tierRole set, a plain tier role is accepted as a fallback.
func (s *CheckInService) memberTier(ctx context.Context, guildID, userID string, tierRole bool) (string, error) {
	member, err := s.discord.Member(ctx, guildID, userID)
	if err != nil {
		return "", err
	}
	roles, err := s.discord.Roles(ctx, guildID)
	if err != nil {
		return "", err
	}
	tiers, err := s.league.Tiers(ctx, guildID)
	if err != nil {
		return "", err
	}
	if tier := freeAgentTier(roles, tiers, member); tier != "" || !tierRole {
		return tier, nil
	}
	for _, t := range tiers {
		if r, ok := discord.RoleByName(roles, t); ok && member.HasRole(r.ID) {
			return t, nil
		}
	}
	return "", nil
}

func freeAgentTier(roles []discord.Role, tiers []string, m discord.Member) string {
	for _, t := range tiers {
		if r, ok := discord.RoleByName(roles, leagueservice.FreeAgentTierRoleName(t)); ok && m.HasRole(r.ID) {
			return t
		}
	}
	return ""
}

func (s *CheckInService) board(ctx context.Context, guildID string) (board, error) {
	b, err := settingsservice.Get(ctx, s.store, guildID, settingsservice.KeyCheckIns, board{})
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = board{}
	}
	return b, nil
}

func (s *CheckInService) save(ctx context.Context, guildID string, b board) error {
	return settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyCheckIns, b)
}

// businessOr turns lookup misses into failures and passes other errors on.
func businessOr[S any](err error) (CheckInResult[S], error) {
	if errors.Is(err, ErrNoMatchDay) || errors.Is(err, leagueservice.ErrTierNotFound) {
		return fail[S](err), nil
	}
	return CheckInResult[S]{}, err
}
