package observes

import (
	"context"
	"testing"
	"time"

	"github.com/ncobase/keyset/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracerDisabled(t *testing.T) {
	for _, conf := range []*config.Tracer{nil, {}} {
		shutdown, err := NewTracer(context.Background(), conf)
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestNewTracerEnabled(t *testing.T) {
	shutdown, err := NewTracer(context.Background(), &config.Tracer{
		Endpoint:     "127.0.0.1:4317",
		Insecure:     true,
		SamplingRate: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
