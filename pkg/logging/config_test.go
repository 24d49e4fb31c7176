package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		require.NotNil(t, cfg)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, logging.FormatAuto, cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.Caller)
	})

	t.Run("NewLoggerFromConfig writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:     "info",
			Format:    logging.FormatJSON,
			Output:    path,
			Caller:    true,
			Component: "engine",
		})
		logger.Info().Msg("test message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "test message")
		assert.Contains(t, string(content), `"component":"engine"`)
		assert.Contains(t, string(content), `"caller"`)
	})

	t.Run("Configure filters below level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warn.log")
		logging.Configure(&logging.Config{Level: "warn", Format: "json", Output: path})

		logging.Debug().Msg("debug message")
		logging.Info().Msg("info message")
		logging.Warn().Msg("warn message")
		logging.Error().Msg("error message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		output := string(content)
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("console format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:   "info",
			Format:  "console",
			Output:  path,
			NoColor: true,
		})
		logger.Info().Str("key", "value").Msg("console test")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "console test")
		assert.Contains(t, string(content), "INF")
	})

	t.Run("text format has no colors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "text.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Format: logging.FormatText, Output: path})
		logger.Warn().Msg("plain")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "WRN")
		assert.NotContains(t, string(content), "\x1b[")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "chatty", Format: "json", Output: "discard"}).Output(&buf)
		logger.Debug().Msg("hidden")
		logger.Info().Msg("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"chatty":  zerolog.InfoLevel,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, logging.ParseLevel(name))
		})
	}
}

func TestLoggerFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("New creates JSON logger", func(t *testing.T) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		var buf bytes.Buffer
		logger := logging.New(&buf)
		logger.Info().Msg("json test")
		assert.Contains(t, buf.String(), `"level":"info"`)
	})

	t.Run("Err adds error to event", func(t *testing.T) {
		var buf bytes.Buffer
		logging.SetDefault(zerolog.New(&buf).Level(zerolog.ErrorLevel))
		logging.Err(assert.AnError).Msg("error test")
		assert.Contains(t, buf.String(), "error test")
		assert.Contains(t, buf.String(), assert.AnError.Error())
	})

	t.Run("DisableLoggingForTest silences output", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		logging.Error().Msg("nothing")
	})
}
