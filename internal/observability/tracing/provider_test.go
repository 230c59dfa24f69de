package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestNewProvider_DisabledStillInstallsGlobal(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Same(t, provider, otel.GetTracerProvider())
}

func TestNewProvider_EnabledWithoutEndpointStaysQuiet(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)
}
