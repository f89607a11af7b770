package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json console output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "info", Console: &buf})
		require.NoError(t, err)
		defer logger.Close()

		logger.Info().Str("component", "router").Msg("routed goal")
		assert.Contains(t, buf.String(), `"component":"router"`)
		assert.Contains(t, buf.String(), `"message":"routed goal"`)
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "warn", Console: &buf})
		require.NoError(t, err)

		logger.Info().Msg("hidden")
		assert.Empty(t, buf.String())
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, err := New(Config{Level: "chatty", Console: &bytes.Buffer{}})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "skillroute.log")
		logger, err := New(Config{Level: "debug", File: logFile, Console: &bytes.Buffer{}})
		require.NoError(t, err)

		logger.Debug().Msg("written to file")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written to file")
	})

	t.Run("pretty output", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "info", Pretty: true, Console: &buf})
		require.NoError(t, err)

		logger.Info().Msg("pretty")
		assert.Contains(t, buf.String(), "pretty")
		assert.NotContains(t, buf.String(), `"message"`)
	})
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Console: &buf})
	require.NoError(t, err)

	logger.Warn().Str("detail", "key sk-abcdefghijklmnopqrstuvwxyz123 rejected").Msg("auth failed")
	assert.NotContains(t, buf.String(), "sk-abcdefghijklmnopqrstuvwxyz123")
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "openai key", input: "sk-proj_0123456789abcdefghijkl", want: "[REDACTED]"},
		{name: "anthropic key", input: "sk-ant-REDACTED", want: "[REDACTED]"},
		{name: "bearer", input: "Authorization: Bearer abc.def", want: "Authorization: [REDACTED]"},
		{name: "plain text", input: "plan my week", want: "plan my week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.input))
		})
	}
}

func TestCloseWithoutFile(t *testing.T) {
	logger, err := New(Config{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
