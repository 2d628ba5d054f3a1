package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MetadataTopic carries the destination of a handler's output message.
const MetadataTopic = "topic"

var ErrNoTopic = errors.New("message has no destination topic")

// Result is one message a handler wants published.
type Result struct {
	Topic   string
	Payload any
}

// WrapTyped adapts a handler that consumes a decoded payload and returns
// follow-up messages to watermill. Output messages inherit the
// input's guild and correlation id. Payloads that fail to decode are logged
// and acked.
func WrapTyped[T any](name string, logger *slog.Logger, tracer trace.Tracer, handler func(context.Context, *T) ([]Result, error)) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), name)
		defer span.End()

		guildID := msg.Metadata.Get(MetadataGuildID)
		payload, err := Decode[T](msg)
		if err != nil {
			logger.ErrorContext(ctx, "Dropping undecodable message",
				slog.String("handler", name),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return nil, nil
		}

		results, err := handler(ctx, &payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "Handler failed",
				slog.String("handler", name),
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(ctx, guildID, r.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			m.Metadata.Set(MetadataTopic, r.Topic)
			if id := middleware.MessageCorrelationID(msg); id != "" {
				middleware.SetCorrelationID(id, m)
			}
			out = append(out, m)
		}
		return out, nil
	}
}

// RoutingPublisher publishes each message to the topic in its metadata when
// the router passes no topic. Closing it leaves the underlying publisher open.
func RoutingPublisher(pub message.Publisher) message.Publisher {
	return routingPublisher{pub: pub}
}

type routingPublisher struct {
	pub message.Publisher
}

func (p routingPublisher) Publish(topic string, messages ...*message.Message) error {
	if topic != "" {
		return p.pub.Publish(topic, messages...)
	}
	for _, m := range messages {
		t := m.Metadata.Get(MetadataTopic)
		if t == "" {
			return fmt.Errorf("%w: %s", ErrNoTopic, m.UUID)
		}
		if err := p.pub.Publish(t, m); err != nil {
			return err
		}
	}
	return nil
}

func (routingPublisher) Close() error { return nil }
