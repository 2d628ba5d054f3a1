package ticketservice

import (
	"context"
	"fmt"
	"log/slog"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// TicketService moves modmail ticket channels into the category of the
// staff group that should handle them.
type TicketService struct {
	store   settingsservice.Store
	discord discord.Client
	logger  *slog.Logger
	tel     observability.Telemetry
}

func NewTicketService(
	store settingsservice.Store,
	dc discord.Client,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *TicketService {
	return &TicketService{
		store:   store,
		discord: dc,
		logger:  logger,
		tel: observability.Telemetry{
			Service: "TicketService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
	}
}

// TicketResult is the result shape of ticket operations.
type TicketResult[S any] = results.OperationResult[S, Failure]

func withTelemetry[S any](
	s *TicketService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (TicketResult[S], error),
) (TicketResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) TicketResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// Assign moves the ticket channel under the kind's category, taking on the
// category's permissions.
func (s *TicketService) Assign(ctx context.Context, guildID, channelID, kind string) (TicketResult[Assignment], error) {
	return withTelemetry(s, ctx, "Assign", guildID, func(ctx context.Context) (TicketResult[Assignment], error) {
		k, err := ParseKind(kind)
		if err != nil {
			return fail[Assignment](err), nil
		}
		route, err := s.route(ctx, guildID, k)
		if err != nil {
			return TicketResult[Assignment]{}, err
		}
		if route.CategoryID == "" {
			return fail[Assignment](fmt.Errorf("%w: %s", ErrCategoryNotSet, k)), nil
		}
		if err := s.discord.MoveChannel(ctx, channelID, route.CategoryID); err != nil {
			return TicketResult[Assignment]{}, err
		}

		s.logger.InfoContext(ctx, "Ticket assigned",
			slog.String("guild_id", guildID),
			slog.String("channel_id", channelID),
			slog.String("kind", string(k)),
		)
		return results.SuccessResult[Assignment, Failure](Assignment{ChannelID: channelID, Route: route}), nil
	})
}

// SetCategory sets where tickets of a kind are moved. Nil unsets it.
func (s *TicketService) SetCategory(ctx context.Context, guildID, kind string, categoryID *string) (TicketResult[Route], error) {
	return s.setRoutePart(ctx, "SetCategory", settingsservice.KeyTicketCategories, guildID, kind, categoryID)
}

// SetRole sets the role pinged when a ticket of a kind is assigned. Nil
// unsets it.
func (s *TicketService) SetRole(ctx context.Context, guildID, kind string, roleID *string) (TicketResult[Route], error) {
	return s.setRoutePart(ctx, "SetRole", settingsservice.KeyTicketRoles, guildID, kind, roleID)
}

func (s *TicketService) setRoutePart(ctx context.Context, op, key, guildID, kind string, id *string) (TicketResult[Route], error) {
	return withTelemetry(s, ctx, op, guildID, func(ctx context.Context) (TicketResult[Route], error) {
		k, err := ParseKind(kind)
		if err != nil {
			return fail[Route](err), nil
		}
		ids, err := settingsservice.Get(ctx, s.store, guildID, key, map[Kind]string{})
		if err != nil {
			return TicketResult[Route]{}, err
		}
		if ids == nil {
			ids = map[Kind]string{}
		}
		if id == nil {
			delete(ids, k)
		} else {
			ids[k] = *id
		}
		if err := settingsservice.Set(ctx, s.store, guildID, key, ids); err != nil {
			return TicketResult[Route]{}, err
		}
		route, err := s.route(ctx, guildID, k)
		if err != nil {
			return TicketResult[Route]{}, err
		}
		return results.SuccessResult[Route, Failure](route), nil
	})
}

// Routes returns the configuration of every kind.
func (s *TicketService) Routes(ctx context.Context, guildID string) ([]Route, error) {
	categories, roles, err := s.maps(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, Route{Kind: k, CategoryID: categories[k], RoleID: roles[k]})
	}
	return out, nil
}

func (s *TicketService) route(ctx context.Context, guildID string, k Kind) (Route, error) {
	categories, roles, err := s.maps(ctx, guildID)
	if err != nil {
		return Route{}, err
	}
	return Route{Kind: k, CategoryID: categories[k], RoleID: roles[k]}, nil
}

func (s *TicketService) maps(ctx context.Context, guildID string) (map[Kind]string, map[Kind]string, error) {
	categories, err := settingsservice.Get[map[Kind]string](ctx, s.store, guildID, settingsservice.KeyTicketCategories, nil)
	if err != nil {
		return nil, nil, err
	}
	roles, err := settingsservice.Get[map[Kind]string](ctx, s.store, guildID, settingsservice.KeyTicketRoles, nil)
	if err != nil {
		return nil, nil, err
	}
	return categories, roles, nil
}
