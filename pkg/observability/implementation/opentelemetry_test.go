package implementation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.Value
	}{
		{name: "string", value: "ann", want: attribute.StringValue("ann")},
		{name: "bool", value: true, want: attribute.BoolValue(true)},
		{name: "int", value: 7, want: attribute.IntValue(7)},
		{name: "int64", value: int64(7), want: attribute.Int64Value(7)},
		{name: "float", value: 1.5, want: attribute.Float64Value(1.5)},
		{name: "strings", value: []string{"a", "b"}, want: attribute.StringSliceValue([]string{"a", "b"})},
		{name: "stringer", value: time.Second, want: attribute.StringValue("1s")},
		{name: "other", value: map[string]int{"a": 1}, want: attribute.StringValue("map[a:1]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := toAttribute("k", tt.value)
			assert.Equal(t, attribute.Key("k"), kv.Key)
			assert.Equal(t, tt.want, kv.Value)
		})
	}
}

func TestOtelTracer(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := NewTracerFromProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), "test")

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.SetAttribute("attempt", 2)
	child.RecordError(errors.New("boom"))
	child.SetSuccess(false)
	child.End()
	parent.SetSuccess(true)
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("attempt", 2))
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
}

func TestNewZapLoggerWithLevel(t *testing.T) {
	_, err := NewZapLoggerWithLevel("debug")
	assert.NoError(t, err)

	_, err = NewZapLoggerWithLevel("")
	assert.NoError(t, err)

	_, err = NewZapLoggerWithLevel("chatty")
	assert.Error(t, err)
}

func TestNewObservability(t *testing.T) {
	obs, err := NewObservability(context.Background(), Config{ServiceName: "test", LogLevel: "warn"})
	require.NoError(t, err)

	assert.NotNil(t, obs.Logger())
	assert.NotNil(t, PromRegistry(obs.Meter()))
	_, span := obs.Tracer().Start(context.Background(), "noop")
	span.End()

	require.NoError(t, obs.Start(context.Background()))
	assert.NoError(t, obs.Close(context.Background()))
}
