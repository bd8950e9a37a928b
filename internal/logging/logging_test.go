package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_WritesJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "shell.log")

	l, err := New(Options{Level: "info", File: file})
	require.NoError(t, err)

	l.Named("probe").Infow("Service is alive", "port", 7113)
	l.Named("probe").Debugw("dropped at info level")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"msg":"Service is alive"`)
	assert.Contains(t, content, `"logger":"probe"`)
	assert.Contains(t, content, `"port":7113`)
	assert.False(t, strings.Contains(content, "dropped at info level"))
}

func TestLogger_SetLevel(t *testing.T) {
	l, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, zapcore.WarnLevel, l.Level())
	l.SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, l.Level())
}
