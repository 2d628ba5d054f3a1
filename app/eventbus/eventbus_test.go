package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace/noop"
)

type samplePayload struct {
	MatchDay int    `json:"match_day"`
	Note     string `json:"note"`
}

func TestInMemoryBus_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := NewInMemoryBus(observability.NopLogger())
	defer bus.Close()

	msgs, err := bus.Subscribe(ctx, MatchDayReportRequestedV1)
	if err != nil {
		t.Fatal(err)
	}

	out, err := NewMessage(ctx, "guild-1", samplePayload{MatchDay: 3, Note: "auto"})
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(MatchDayReportRequestedV1, out); err != nil {
		t.Fatal(err)
	}

	select {
	case in := <-msgs:
		in.Ack()
		got, err := Decode[samplePayload](in)
		if err != nil {
			t.Fatal(err)
		}
		if got.MatchDay != 3 || got.Note != "auto" {
			t.Errorf("payload = %+v", got)
		}
		if in.Metadata.Get(MetadataGuildID) != "guild-1" {
			t.Errorf("guild metadata = %q", in.Metadata.Get(MetadataGuildID))
		}
		if middleware.MessageCorrelationID(in) == "" {
			t.Error("expected a correlation id")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(topic string, messages ...*message.Message) error {
	for range messages {
		p.topics = append(p.topics, topic)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestWrapTyped(t *testing.T) {
	handler := WrapTyped("test", observability.NopLogger(), noop.NewTracerProvider().Tracer("test"),
		func(_ context.Context, p *samplePayload) ([]Result, error) {
			if p.Note == "fail" {
				return nil, errors.New("boom")
			}
			return []Result{
				{Topic: MatchReportedV1, Payload: samplePayload{MatchDay: p.MatchDay + 1}},
				{Topic: MatchDayReportCompletedV1, Payload: samplePayload{MatchDay: p.MatchDay}},
			}, nil
		})

	in, err := NewMessage(context.Background(), "guild-1", samplePayload{MatchDay: 2})
	if err != nil {
		t.Fatal(err)
	}
	out, err := handler(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2", len(out))
	}
	first, err := Decode[samplePayload](out[0])
	if err != nil {
		t.Fatal(err)
	}
	if first.MatchDay != 3 {
		t.Errorf("MatchDay = %d, want 3", first.MatchDay)
	}
	if out[0].Metadata.Get(MetadataGuildID) != "guild-1" {
		t.Errorf("guild metadata not propagated")
	}
	if middleware.MessageCorrelationID(out[0]) != middleware.MessageCorrelationID(in) {
		t.Errorf("correlation id not propagated")
	}

	pub := &recordingPublisher{}
	if err := RoutingPublisher(pub).Publish("", out...); err != nil {
		t.Fatal(err)
	}
	if len(pub.topics) != 2 || pub.topics[0] != MatchReportedV1 || pub.topics[1] != MatchDayReportCompletedV1 {
		t.Errorf("published to %v", pub.topics)
	}

	failing, _ := NewMessage(context.Background(), "guild-1", samplePayload{Note: "fail"})
	if _, err := handler(failing); err == nil {
		t.Error("expected handler error")
	}

	garbage := message.NewMessage("bad", []byte("{"))
	if out, err := handler(garbage); err != nil || out != nil {
		t.Errorf("undecodable message: out=%v err=%v", out, err)
	}

	if err := RoutingPublisher(pub).Publish("", message.NewMessage("x", nil)); !errors.Is(err, ErrNoTopic) {
		t.Errorf("err = %v, want ErrNoTopic", err)
	}
}
