package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
