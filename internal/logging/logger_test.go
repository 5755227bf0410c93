package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/relcontext/internal/model"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := New(model.LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, "format %q", format)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(model.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = New(model.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
