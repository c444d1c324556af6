package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"", "local", "dev", "prod"} {
		t.Run("env="+env, func(t *testing.T) {
			l, err := New(env, "")
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestNew_LevelOverride(t *testing.T) {
	l, err := New("prod", "debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("dev", "error")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("staging", "")
	assert.Error(t, err)

	_, err = New("dev", "loud")
	assert.Error(t, err)
}
