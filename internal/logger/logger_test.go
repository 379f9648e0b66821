package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		Log = zap.NewNop().Sugar()
	})

	require.NoError(t, Init("debug"))
	assert.True(t, Log.Desugar().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init("warning"))
	assert.False(t, Log.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, Log.Desugar().Core().Enabled(zap.WarnLevel))

	assert.Error(t, Init("loud"))
}

func TestAdaptersDoNotPanicOnNopLogger(t *testing.T) {
	Log = zap.NewNop().Sugar()

	assert.NotPanics(t, func() {
		RestyAdapter{}.Debugf("request %s", "GET /")
		RestyAdapter{}.Warnf("retrying %d", 1)
		RestyAdapter{}.Errorf("failed: %v", "boom")
		GooseAdapter{}.Printf("OK   %s\n", "00001_init.sql")
		GooseAdapter{}.Fatalf("no migrations in %s", "dir")
	})
}
