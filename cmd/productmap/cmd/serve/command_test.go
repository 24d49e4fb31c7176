package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/productmap/internal/cmd/application"
	"github.com/agentstation/productmap/internal/server"
)

func TestParseConfigDefaults(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := parseConfig(cmd)
	defaults := server.DefaultConfig()
	assert.Equal(t, defaults.Port, cfg.Port)
	assert.Equal(t, defaults.PathPrefix, cfg.PathPrefix)
	assert.Equal(t, defaults.UserHeader, cfg.UserHeader)
	assert.Equal(t, defaults.CacheTTL, cfg.CacheTTL)
	assert.Equal(t, defaults.SessionIdle, cfg.SessionIdle)
	assert.True(t, cfg.MetricsEnabled)
}

func TestParseConfigFlags(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "9090",
		"--cache-ttl", "5",
		"--session-idle", "1m",
		"--cors-origins", "https://a.example,https://b.example",
		"--user-header", "X-Account",
		"--metrics=false",
	}))

	cfg := parseConfig(cmd)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.SessionIdle)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "X-Account", cfg.UserHeader)
	assert.False(t, cfg.MetricsEnabled)
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("HTTP_HOST", "0.0.0.0")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := parseConfig(cmd)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
}

func TestParsePort(t *testing.T) {
	port, err := parsePort("8443")
	require.NoError(t, err)
	assert.Equal(t, 8443, port)

	_, err = parsePort("http")
	assert.Error(t, err)
	_, err = parsePort("70000")
	assert.Error(t, err)
}
