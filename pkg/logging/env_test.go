package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("PRODUCTMAP_LOG_LEVEL", "")
	t.Setenv("PRODUCTMAP_DEBUG", "")
	t.Setenv("PRODUCTMAP_LOG_FORMAT", "")
	t.Setenv("PRODUCTMAP_LOG_OUTPUT", "")
	cfg := FromEnv()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, FormatAuto, cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)

	t.Setenv("PRODUCTMAP_DEBUG", "1")
	assert.Equal(t, "debug", FromEnv().Level)

	t.Setenv("PRODUCTMAP_LOG_LEVEL", "warn")
	t.Setenv("PRODUCTMAP_LOG_FORMAT", "JSON")
	t.Setenv("PRODUCTMAP_LOG_OUTPUT", "stdout")
	cfg = FromEnv()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}
