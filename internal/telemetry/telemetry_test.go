package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "", "pdbuild", "test", true)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewProvider_ExportsSpans(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	exp := tracetest.NewInMemoryExporter()
	tp, err := newProvider(ctx, exp, "pdbuild", "1.2.3")
	require.NoError(t, err)

	// --- Act ---
	_, span := tp.Tracer("test").Start(ctx, "reconcile.run")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	// --- Assert ---
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "reconcile.run", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceNameKey.String("pdbuild"))
}
