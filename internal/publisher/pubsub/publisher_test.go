package pubsub

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeResult struct {
	id  string
	err error
}

func (r fakeResult) Get(context.Context) (string, error) { return r.id, r.err }

type fakeTopic struct {
	messages []*pubsub.Message
	result   fakeResult
}

func (t *fakeTopic) Publish(_ context.Context, msg *pubsub.Message) resultGetter {
	t.messages = append(t.messages, msg)
	return t.result
}

func TestPublishMarshalsPayload(t *testing.T) {
	t.Parallel()

	topic := &fakeTopic{result: fakeResult{id: "msg-1"}}
	stopped := false
	p := &Publisher{topic: topic, stop: func() { stopped = true }}

	id, err := p.Publish(context.Background(), map[string]any{"search_id": "s1", "count": 3})
	require.NoError(t, err)
	require.Equal(t, "msg-1", id)
	require.Len(t, topic.messages, 1)
	require.JSONEq(t, `{"search_id":"s1","count":3}`, string(topic.messages[0].Data))
	require.Equal(t, "application/json", topic.messages[0].Attributes["content-type"])

	require.NoError(t, p.Close())
	require.True(t, stopped)
}

func TestPublishInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	topic := &fakeTopic{result: fakeResult{id: "msg-2"}}
	p := &Publisher{topic: topic}
	_, err = p.Publish(ctx, map[string]string{"term": "go"})
	require.NoError(t, err)
	require.Equal(t,
		"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		topic.messages[0].Attributes["traceparent"])
}

func TestPublishErrors(t *testing.T) {
	t.Parallel()

	p := &Publisher{topic: &fakeTopic{result: fakeResult{err: errors.New("deadline")}}}
	_, err := p.Publish(context.Background(), "x")
	require.ErrorContains(t, err, "publish message")

	_, err = p.Publish(context.Background(), func() {})
	require.ErrorContains(t, err, "marshal payload")

	var nilPublisher *Publisher
	_, err = nilPublisher.Publish(context.Background(), "x")
	require.Error(t, err)
}

func TestDialValidation(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), "", "topic")
	require.Error(t, err)
}
