package bcservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	bcclient "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/client"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
)

// AuthTokenOutcome is the account behind a newly stored token.
type AuthTokenOutcome struct {
	Identity bcclient.Identity `json:"identity"`
	// ClearedTopLevelGroup is set when a previous top level group was
	// dropped along with the old token.
	ClearedTopLevelGroup bool `json:"cleared_top_level_group"`
}

// SetAuthToken validates the token against ballchasing and stores it. The
// top level group belongs to the previous token's account, so it is cleared.
func (s *BallchasingService) SetAuthToken(ctx context.Context, guildID, token string) (BallchasingResult[AuthTokenOutcome], error) {
	return withTelemetry(s, ctx, "SetAuthToken", guildID, func(ctx context.Context) (BallchasingResult[AuthTokenOutcome], error) {
		token = strings.TrimSpace(token)
		if token == "" {
			return fail[AuthTokenOutcome](ErrInvalidAuthToken), nil
		}

		identity, err := s.registry.Open(token).Ping(ctx)
		if err != nil {
			if bcclient.IsStatus(err, http.StatusUnauthorized) || bcclient.IsStatus(err, http.StatusForbidden) {
				return fail[AuthTokenOutcome](ErrInvalidAuthToken), nil
			}
			return BallchasingResult[AuthTokenOutcome]{}, fmt.Errorf("failed to validate auth token: %w", err)
		}

		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyAuthToken, &token); err != nil {
			return BallchasingResult[AuthTokenOutcome]{}, err
		}
		s.registry.Forget(guildID)

		out := AuthTokenOutcome{Identity: identity}
		previous, err := settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyTopLevelGroup)
		if err != nil {
			return BallchasingResult[AuthTokenOutcome]{}, err
		}
		if previous != nil && *previous != "" {
			if err := settingsservice.Set[*string](ctx, s.store, guildID, settingsservice.KeyTopLevelGroup, nil); err != nil {
				return BallchasingResult[AuthTokenOutcome]{}, err
			}
			out.ClearedTopLevelGroup = true
		}

		s.logger.InfoContext(ctx, "Ballchasing auth token updated",
			slog.String("guild_id", guildID),
			slog.String("steam_id", identity.SteamID),
			slog.Bool("cleared_top_level_group", out.ClearedTopLevelGroup),
		)
		return results.SuccessResult[AuthTokenOutcome, Failure](out), nil
	})
}

// SetTopLevelGroup stores the group all reports are filed under. The input
// may be a group id or link, and the group must be owned by the account
// behind the guild's token.
func (s *BallchasingService) SetTopLevelGroup(ctx context.Context, guildID, input string) (BallchasingResult[bcclient.Group], error) {
	return withTelemetry(s, ctx, "SetTopLevelGroup", guildID, func(ctx context.Context) (BallchasingResult[bcclient.Group], error) {
		groupID := bcclient.ParseGroupID(input)
		if groupID == "" {
			return fail[bcclient.Group](ErrGroupNotFound), nil
		}

		api, err := s.registry.Client(ctx, guildID)
		if err != nil {
			return businessOr[bcclient.Group](err, ErrNoAuthToken)
		}

		group, err := api.Group(ctx, groupID)
		if err != nil {
			if bcclient.IsStatus(err, http.StatusNotFound) {
				return fail[bcclient.Group](fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)), nil
			}
			return BallchasingResult[bcclient.Group]{}, err
		}
		identity, err := api.Ping(ctx)
		if err != nil {
			if bcclient.IsStatus(err, http.StatusUnauthorized) {
				return fail[bcclient.Group](ErrInvalidAuthToken), nil
			}
			return BallchasingResult[bcclient.Group]{}, err
		}
		if group.Creator.SteamID != identity.SteamID {
			return fail[bcclient.Group](ErrGroupOwnerMismatch), nil
		}

		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTopLevelGroup, &group.ID); err != nil {
			return BallchasingResult[bcclient.Group]{}, err
		}
		if group.Link == "" {
			group.Link = bcclient.GroupLink(group.ID)
		}
		return results.SuccessResult[bcclient.Group, Failure](group), nil
	})
}

// TopLevelGroupLink returns the link to the guild's top level group.
func (s *BallchasingService) TopLevelGroupLink(ctx context.Context, guildID string) (BallchasingResult[string], error) {
	return withTelemetry(s, ctx, "TopLevelGroupLink", guildID, func(ctx context.Context) (BallchasingResult[string], error) {
		id, err := settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyTopLevelGroup)
		if err != nil {
			return BallchasingResult[string]{}, err
		}
		if id == nil || *id == "" {
			return fail[string](ErrNoTopLevelGroup), nil
		}
		return results.SuccessResult[string, Failure](bcclient.GroupLink(*id)), nil
	})
}
