package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry is the logger/tracer/metrics triple every service carries.
type Telemetry struct {
	Service string
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics OperationMetrics
}

// WithTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func WithTelemetry[S any, F any](
	ctx context.Context,
	t Telemetry,
	operationName string,
	guildID string,
	op func(ctx context.Context) (results.OperationResult[S, F], error),
) (result results.OperationResult[S, F], err error) {
	ctx, span := t.Tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("guild_id", guildID),
		attribute.String("service", t.Service),
	))
	defer span.End()

	t.Metrics.RecordOperationAttempt(ctx, operationName, t.Service)

	startTime := time.Now()
	defer func() {
		t.Metrics.RecordOperationDuration(ctx, operationName, t.Service, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			t.Logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		t.Logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.Any("error", wrappedErr),
		)
		t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Business failures are not operation failures.
	if result.Failure != nil {
		t.Logger.WarnContext(ctx, "Operation returned failure result",
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.Success != nil {
		t.Logger.InfoContext(ctx, "Operation completed successfully",
			slog.String("operation", operationName),
			slog.String("guild_id", guildID),
			slog.String("success_type", fmt.Sprintf("%T", *result.Success)),
		)
	}

	t.Metrics.RecordOperationSuccess(ctx, operationName, t.Service)
	return result, nil
}
