package transactionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	leagueservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/league/application"
	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// TransactionService applies roster moves and announces them.
type TransactionService struct {
	store     settingsservice.Store
	league    League
	discord   discord.Client
	messenger Messenger
	logger    *slog.Logger
	tel       observability.Telemetry
}

func NewTransactionService(
	store settingsservice.Store,
	league League,
	dc discord.Client,
	messenger Messenger,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *TransactionService {
	return &TransactionService{
		store:     store,
		league:    league,
		discord:   dc,
		messenger: messenger,
		logger:    logger,
		tel: observability.Telemetry{
			Service: "TransactionService",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
	}
}

// TransactionResult is the result shape of transaction operations.
type TransactionResult[S any] = results.OperationResult[S, Failure]

func withTelemetry[S any](
	s *TransactionService,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (TransactionResult[S], error),
) (TransactionResult[S], error) {
	return observability.WithTelemetry(ctx, s.tel, operationName, guildID, op)
}

func fail[S any](err error) TransactionResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// businessOr turns lookup misses into failures and passes other errors on.
func businessOr[S any](err error) (TransactionResult[S], error) {
	if errors.Is(err, leagueservice.ErrTeamNotFound) {
		return fail[S](err), nil
	}
	return TransactionResult[S]{}, err
}

// SetTransChannel sets the channel roster moves are announced in. Nil unsets it.
func (s *TransactionService) SetTransChannel(ctx context.Context, guildID string, channelID *string) (TransactionResult[*string], error) {
	return withTelemetry(s, ctx, "SetTransChannel", guildID, func(ctx context.Context) (TransactionResult[*string], error) {
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyTransChannel, channelID); err != nil {
			return TransactionResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](channelID), nil
	})
}

func (s *TransactionService) TransChannel(ctx context.Context, guildID string) (*string, error) {
	return settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyTransChannel)
}

// SetCutMessage sets the direct message sent to cut players. It may use the
// placeholders {player}, {franchise}, {gm}, {team} and {tier}. Nil unsets it.
func (s *TransactionService) SetCutMessage(ctx context.Context, guildID string, message *string) (TransactionResult[*string], error) {
	return withTelemetry(s, ctx, "SetCutMessage", guildID, func(ctx context.Context) (TransactionResult[*string], error) {
		if err := settingsservice.Set(ctx, s.store, guildID, settingsservice.KeyCutMessage, message); err != nil {
			return TransactionResult[*string]{}, err
		}
		return results.SuccessResult[*string, Failure](message), nil
	})
}

func (s *TransactionService) CutMessage(ctx context.Context, guildID string) (*string, error) {
	return settingsservice.GetString(ctx, s.store, guildID, settingsservice.KeyCutMessage)
}

func (s *TransactionService) announce(ctx context.Context, channelID, content string) (string, error) {
	id, err := s.discord.Send(ctx, channelID, discord.Message{Content: content})
	if err != nil {
		return "", fmt.Errorf("failed to announce transaction: %w", err)
	}
	return id, nil
}
