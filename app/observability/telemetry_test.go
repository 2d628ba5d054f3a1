package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace/noop"
)

type countingMetrics struct {
	NoOpMetrics
	attempts, successes, failures int
}

func (c *countingMetrics) RecordOperationAttempt(context.Context, string, string) { c.attempts++ }
func (c *countingMetrics) RecordOperationSuccess(context.Context, string, string) { c.successes++ }
func (c *countingMetrics) RecordOperationFailure(context.Context, string, string) { c.failures++ }

func TestWithTelemetry(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name          string
		op            func(ctx context.Context) (results.OperationResult[string, string], error)
		wantErr       string
		wantSuccesses int
		wantFailures  int
	}{
		{
			name: "success",
			op: func(context.Context) (results.OperationResult[string, string], error) {
				return results.SuccessResult[string, string]("ok"), nil
			},
			wantSuccesses: 1,
		},
		{
			name: "business failure still counts as success",
			op: func(context.Context) (results.OperationResult[string, string], error) {
				return results.FailureResult[string, string]("bad input"), nil
			},
			wantSuccesses: 1,
		},
		{
			name: "error is wrapped with operation name",
			op: func(context.Context) (results.OperationResult[string, string], error) {
				return results.OperationResult[string, string]{}, errors.New("db down")
			},
			wantErr:      "DoThing: db down",
			wantFailures: 1,
		},
		{
			name: "panic is recovered",
			op: func(context.Context) (results.OperationResult[string, string], error) {
				panic("boom")
			},
			wantErr:      "panic in DoThing: boom",
			wantFailures: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &countingMetrics{}
			tel := Telemetry{Service: "TestService", Logger: NopLogger(), Tracer: tracer, Metrics: metrics}

			_, err := WithTelemetry(context.Background(), tel, "DoThing", "guild-1", tt.op)
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
			if metrics.attempts != 1 {
				t.Errorf("attempts = %d, want 1", metrics.attempts)
			}
			if metrics.successes != tt.wantSuccesses {
				t.Errorf("successes = %d, want %d", metrics.successes, tt.wantSuccesses)
			}
			if metrics.failures != tt.wantFailures {
				t.Errorf("failures = %d, want %d", metrics.failures, tt.wantFailures)
			}
		})
	}
}
