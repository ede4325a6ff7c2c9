package tracing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewDisabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	p, err := New(lc, Config{ServiceName: "livescan"}, zap.NewNop())
	require.NoError(t, err)
	require.False(t, p.Enabled())

	p, err = New(lc, Config{ServiceName: "livescan", Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	require.False(t, p.Enabled(), "enabled without an endpoint stays a noop")
}
