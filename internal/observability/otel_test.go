package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/snaportho/snaportho-web/internal/config"
)

// withExporter swaps the exporter seam and restores it and the otel globals
// when the test ends.
func withExporter(t *testing.T, fn func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error)) {
	t.Helper()
	prevExp := newExporter
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	newExporter = fn
	t.Cleanup(func() {
		newExporter = prevExp
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestSetupOTel_DisabledLeavesGlobals(t *testing.T) {
	called := false
	withExporter(t, func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		called = true
		return tracetest.NewInMemoryExporter(), nil
	})
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "dev")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.False(t, called)
	assert.Equal(t, before, otel.GetTracerProvider())
}

// keepSpans stops the provider's shutdown from resetting the recorded spans.
type keepSpans struct{ *tracetest.InMemoryExporter }

func (keepSpans) Shutdown(context.Context) error { return nil }

func TestSetupOTel_ExportsServiceSpans(t *testing.T) {
	mem := tracetest.NewInMemoryExporter()
	var gotCfg config.OTELConfig
	withExporter(t, func(_ context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		gotCfg = cfg
		return keepSpans{mem}, nil
	})

	cfg := config.OTELConfig{Enabled: true, Endpoint: "collector:4317", Insecure: true, ServiceName: "snaportho-web", SampleRatio: 1}
	shutdown, err := SetupOTel(context.Background(), cfg, "1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "collector:4317", gotCfg.Endpoint)

	_, span := otel.Tracer("services/BroBotService").Start(context.Background(), "Ask")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	spans := mem.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Ask", spans[0].Name)

	var svc, ver string
	for _, kv := range spans[0].Resource.Attributes() {
		switch kv.Key {
		case "service.name":
			svc = kv.Value.AsString()
		case "service.version":
			ver = kv.Value.AsString()
		}
	}
	assert.Equal(t, "snaportho-web", svc)
	assert.Equal(t, "1.2.3", ver)
}

func TestSetupOTel_InstallsTraceContextPropagator(t *testing.T) {
	withExporter(t, func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		return tracetest.NewInMemoryExporter(), nil
	})
	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: true, ServiceName: "svc", SampleRatio: 1}, "dev")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "outer")
	defer span.End()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	assert.NotEmpty(t, carrier.Get("traceparent"))
}

func TestSetupOTel_ExporterErrorLeavesGlobals(t *testing.T) {
	boom := errors.New("dial failed")
	withExporter(t, func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		return nil, boom
	})
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: true, ServiceName: "svc"}, "dev")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, shutdown)
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(5).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
