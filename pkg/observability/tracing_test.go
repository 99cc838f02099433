package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{ServiceName: "link-service"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerWithEndpoint(t *testing.T) {
	// The gRPC exporter connects lazily, so no collector is needed here.
	shutdown, err := InitTracer(context.Background(), TracingConfig{
		ServiceName: "link-service",
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
		SampleRatio: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
