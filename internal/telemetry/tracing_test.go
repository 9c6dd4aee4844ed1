package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(false, "", nil)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledProviderExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(true, "intake-test", &buf)
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "CalculateVehicleGrade")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "CalculateVehicleGrade")
	assert.Contains(t, buf.String(), "intake-test")
}
