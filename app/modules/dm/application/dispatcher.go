package dmservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	settingsservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/discord"
	"github.com/Black-And-White-Club/rsc-league-bot/app/shared/results"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	outcomeSent   = "sent"
	outcomeFailed = "failed"
)

// DMResult is the result shape of dm operations.
type DMResult[S any] = results.OperationResult[S, Failure]

// Dispatcher delivers direct messages one at a time. Priority requests are
// always sent before normal ones and sends are spaced by the configured
// interval.
type Dispatcher struct {
	discord discord.Client
	store   settingsservice.Store
	logger  *slog.Logger
	metrics observability.DMMetrics
	tel     observability.Telemetry
	limiter *rate.Limiter
	now     func() time.Time

	mu       sync.Mutex
	priority []Request
	normal   []Request
	backlog  map[string]map[string][]Request
	wake     chan struct{}

	// owned by Run
	failed []failedDelivery
}

type Option func(*Dispatcher)

func WithDMMetrics(m observability.DMMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher builds a dispatcher. An interval of zero sends without delay.
func NewDispatcher(
	dc discord.Client,
	store settingsservice.Store,
	interval time.Duration,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	opts ...Option,
) *Dispatcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	d := &Dispatcher{
		discord: dc,
		store:   store,
		logger:  logger,
		metrics: observability.NoOpMetrics{},
		tel: observability.Telemetry{
			Service: "DMDispatcher",
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
		},
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		backlog: map[string]map[string][]Request{},
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func withTelemetry[S any](
	d *Dispatcher,
	ctx context.Context,
	operationName, guildID string,
	op func(ctx context.Context) (DMResult[S], error),
) (DMResult[S], error) {
	return observability.WithTelemetry(ctx, d.tel, operationName, guildID, op)
}

func fail[S any](err error) DMResult[S] {
	return results.FailureResult[S](Failure{Err: err})
}

// Enqueue queues a message and wakes the worker.
func (d *Dispatcher) Enqueue(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	d.mu.Lock()
	if req.Priority {
		d.priority = append(d.priority, req)
	} else {
		d.normal = append(d.normal, req)
	}
	p, n := len(d.priority), len(d.normal)
	d.mu.Unlock()

	d.metrics.RecordQueueDepth(ctx, p, n)
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// EnqueueRole queues msg for every member holding roleID.
func (d *Dispatcher) EnqueueRole(ctx context.Context, guildID, roleID string, msg discord.Message, origin *Origin) (DMResult[int], error) {
	return withTelemetry(d, ctx, "EnqueueRole", guildID, func(ctx context.Context) (DMResult[int], error) {
		members, err := d.discord.Members(ctx, guildID)
		if err != nil {
			return DMResult[int]{}, err
		}
		recipients := discord.MembersWithRoles(members, roleID)
		if len(recipients) == 0 {
			return fail[int](ErrNoRecipients), nil
		}
		for _, m := range recipients {
			err := d.Enqueue(ctx, Request{
				GuildID:     guildID,
				RecipientID: m.ID,
				Message:     msg,
				Origin:      origin,
			})
			if err != nil {
				return fail[int](err), nil
			}
		}
		d.logger.InfoContext(ctx, "Queued role DMs",
			slog.String("guild_id", guildID),
			slog.String("role_id", roleID),
			slog.Int("count", len(recipients)),
		)
		return results.SuccessResult[int, Failure](len(recipients)), nil
	})
}

// Depth reports how many messages are waiting in each lane.
func (d *Dispatcher) Depth() Depth {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Depth{Priority: len(d.priority), Normal: len(d.normal)}
}

// Run drains the queue whenever work arrives and reports failed deliveries
// after each drain. It returns when ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.wake:
		}
		if err := d.drain(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		d.reportFailures(ctx)
	}
}

// drain sends until both lanes are empty. The limiter is waited on before a
// request is popped, so a cancelled wait leaves the request queued.
func (d *Dispatcher) drain(ctx context.Context) error {
	for {
		if depth := d.Depth(); depth.Priority+depth.Normal == 0 {
			return nil
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
		req, ok := d.pop(ctx)
		if !ok {
			return nil
		}
		d.deliver(ctx, req)
	}
}

func (d *Dispatcher) pop(ctx context.Context) (Request, bool) {
	d.mu.Lock()
	var req Request
	switch {
	case len(d.priority) > 0:
		req, d.priority = d.priority[0], d.priority[1:]
	case len(d.normal) > 0:
		req, d.normal = d.normal[0], d.normal[1:]
	default:
		d.mu.Unlock()
		return Request{}, false
	}
	p, n := len(d.priority), len(d.normal)
	d.mu.Unlock()

	d.metrics.RecordQueueDepth(ctx, p, n)
	return req, true
}

func (d *Dispatcher) deliver(ctx context.Context, req Request) {
	err := d.discord.SendDirect(ctx, req.RecipientID, req.Message)
	if err == nil {
		d.metrics.RecordDirectMessage(ctx, outcomeSent)
		return
	}

	d.metrics.RecordDirectMessage(ctx, outcomeFailed)
	d.logger.WarnContext(ctx, "Direct message failed",
		slog.String("guild_id", req.GuildID),
		slog.String("recipient_id", req.RecipientID),
		slog.Any("error", err),
	)
	d.failed = append(d.failed, failedDelivery{Request: req, Err: err, At: d.now()})
	d.markUnreachable(ctx, req)
}
