package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

const (
	MetadataGuildID       = "guild_id"
	MetadataCorrelationID = "correlation_id"
	queueGroupPrefix      = "leaguebot"
)

// EventBus publishes and subscribes to topics.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Bus is an EventBus over a watermill publisher/subscriber pair.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	// shared is set when one pubsub serves both sides.
	shared bool
}

var _ EventBus = (*Bus)(nil)

// NewNATSBus connects to core NATS through watermill-nats.
func NewNATSBus(natsURL string, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: queueGroupPrefix,
			SubscribersCount: 1,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   30 * time.Second,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			JetStream:        nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &Bus{publisher: publisher, subscriber: subscriber, logger: wmLogger}, nil
}

// NewInMemoryBus is a process-local bus used when no NATS URL is configured
// and in tests.
func NewInMemoryBus(logger *slog.Logger) *Bus {
	wmLogger := watermill.NewSlogLogger(logger)
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
	return &Bus{publisher: ch, subscriber: ch, logger: wmLogger, shared: true}
}

func (b *Bus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	var errs []error
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if !b.shared {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publisher exposes the underlying publisher for routers.
func (b *Bus) Publisher() message.Publisher { return b.publisher }

// Subscriber exposes the underlying subscriber for routers.
func (b *Bus) Subscriber() message.Subscriber { return b.subscriber }

// Logger is the watermill logger adapter the bus was built with.
func (b *Bus) Logger() watermill.LoggerAdapter { return b.logger }

// NewRouter builds a watermill router with the shared middleware stack.
func NewRouter(logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	return router, nil
}

// NewMessage JSON-encodes payload into a message tagged with the guild.
func NewMessage(ctx context.Context, guildID string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataGuildID, guildID)
	if id := middleware.MessageCorrelationID(msg); id == "" {
		middleware.SetCorrelationID(watermill.NewUUID(), msg)
	}
	return msg, nil
}

// Decode unmarshals a message payload.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return v, nil
}
