package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/productmap/pkg/constants"
)

// Format selects how records are rendered.
type Format string

// Log formats accepted by the log.format key.
const (
	FormatAuto    Format = "auto"    // console on a terminal, JSON otherwise
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
	FormatPretty  Format = "pretty" // same as console
	FormatText    Format = "text"   // console without colors
)

// Config mirrors the log.* keys of the productmap configuration.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format Format `mapstructure:"format" yaml:"format"`

	// Output is stderr, stdout, discard or a file path (appended to).
	Output string `mapstructure:"output" yaml:"output"`

	// Component is stamped on every record, e.g. "engine" or "server".
	Component string `mapstructure:"component" yaml:"component,omitempty"`

	// Caller adds file:line. Debug and trace levels always add it.
	Caller bool `mapstructure:"caller" yaml:"caller,omitempty"`

	NoColor bool `mapstructure:"no_color" yaml:"no_color,omitempty"`
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   zerolog.InfoLevel.String(),
		Format:  FormatAuto,
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// FromEnv returns DefaultConfig overridden by PRODUCTMAP_LOG_LEVEL,
// PRODUCTMAP_LOG_FORMAT and PRODUCTMAP_LOG_OUTPUT. PRODUCTMAP_DEBUG is a
// shortcut for the debug level.
func FromEnv() *Config {
	cfg := DefaultConfig()
	if format := os.Getenv(envKey("LOG_FORMAT")); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if output := os.Getenv(envKey("LOG_OUTPUT")); output != "" {
		cfg.Output = output
	}
	switch level := os.Getenv(envKey("LOG_LEVEL")); {
	case level != "":
		cfg.Level = level
	case os.Getenv(envKey("DEBUG")) != "":
		cfg.Level = zerolog.DebugLevel.String()
	}
	return cfg
}

func envKey(name string) string {
	return constants.EnvPrefix + "_" + name
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out, terminal := cfg.output()
	ctx := zerolog.New(cfg.render(out, terminal)).Level(level).With().Timestamp()
	if cfg.Caller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	return ctx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ParseLevel maps a level name to a zerolog level. "warning" and "off" are
// accepted; anything unknown is info.
func ParseLevel(name string) zerolog.Level {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// output opens the configured destination. A file that cannot be opened
// falls back to stderr. terminal reports a stderr that is a terminal.
func (c *Config) output() (w io.Writer, terminal bool) {
	switch strings.ToLower(c.Output) {
	case "", "stderr":
		return os.Stderr, stderrIsTerminal()
	case "stdout":
		return os.Stdout, false
	case "discard", "none":
		return io.Discard, false
	}
	file, err := os.OpenFile(c.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, stderrIsTerminal()
	}
	return file, false
}

func (c *Config) render(out io.Writer, terminal bool) io.Writer {
	format := Format(strings.ToLower(string(c.Format)))
	if format == FormatAuto || format == "" {
		if !terminal {
			return out
		}
		format = FormatConsole
	}
	switch format {
	case FormatConsole, FormatPretty, FormatText:
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    c.NoColor || format == FormatText,
		}
	default:
		return out
	}
}
