package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Format  string `validate:"omitempty,oneof=table json yaml wide"`

	// Config file
	ConfigFile string

	// Catalog source
	Source           string `validate:"oneof=mongodb memory"`
	MongoURI         string `validate:"required_if=Source mongodb"`
	MongoDatabase    string `validate:"required_if=Source mongodb"`
	ConnectTimeout   time.Duration
	SeedFile         string
	ConnectivityMode string `validate:"oneof=auto online offline probe"`
	ProbeAddr        string `validate:"required_if=ConnectivityMode probe"`

	// Snapshot store
	SnapshotBackend string `validate:"oneof=bolt files memory"`
	SnapshotPath    string `validate:"required_unless=SnapshotBackend memory"`
	SnapshotFormat  string `validate:"oneof=json yaml"`

	// Engine
	User               string
	OnlyFavorites      bool
	PageSize           int           `validate:"min=1,max=1000"`
	RemoteTimeout      time.Duration `validate:"gt=0"`
	AutoUpdatesEnabled bool
	AutoUpdateInterval time.Duration `validate:"gte=0"`

	// Logging configuration
	LogLevel  string
	LogFormat string `validate:"omitempty,oneof=auto json console text pretty"`
	LogOutput string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (PRODUCTMAP_ prefix)
// 3. .env files
// 4. Config file (~/.productmap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// searches the standard locations; an explicit file must exist.
func LoadConfigFile(path string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)

	// Set up Viper for environment variables
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(expandHome(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		return fromViper(v), nil
	}

	// Search for config in standard locations
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(constants.DefaultConfigName)

	// Read config file (ignore error if not found)
	_ = v.ReadInConfig()

	return fromViper(v), nil
}

// setDefaults registers the default of every key.
func setDefaults(v *viper.Viper) {
	dataPath := expandHome(constants.DefaultDataPath)

	v.SetDefault("source", "memory")
	v.SetDefault("mongodb.uri", constants.DefaultMongoURI)
	v.SetDefault("mongodb.database", constants.DefaultMongoDatabase)
	v.SetDefault("mongodb.timeout", constants.ConnectTimeout)
	v.SetDefault("connectivity.mode", "auto")
	v.SetDefault("snapshot.backend", "bolt")
	v.SetDefault("snapshot.path", filepath.Join(dataPath, constants.DefaultSnapshotFile))
	v.SetDefault("snapshot.format", "json")
	v.SetDefault("page_size", constants.DefaultPageSize)
	v.SetDefault("remote_timeout", constants.RemoteCallTimeout)
	v.SetDefault("auto_update_interval", constants.DefaultUpdateInterval)
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// fromViper builds a Config from the resolved viper keys.
func fromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Source:           v.GetString("source"),
		MongoURI:         v.GetString("mongodb.uri"),
		MongoDatabase:    v.GetString("mongodb.database"),
		SeedFile:         expandHome(v.GetString("seed_file")),
		ConnectTimeout:   v.GetDuration("mongodb.timeout"),
		ConnectivityMode: v.GetString("connectivity.mode"),
		ProbeAddr:        v.GetString("connectivity.probe_addr"),

		SnapshotBackend: v.GetString("snapshot.backend"),
		SnapshotPath:    expandHome(v.GetString("snapshot.path")),
		SnapshotFormat:  v.GetString("snapshot.format"),

		User:               v.GetString("user"),
		OnlyFavorites:      v.GetBool("only_favorites"),
		PageSize:           v.GetInt("page_size"),
		RemoteTimeout:      v.GetDuration("remote_timeout"),
		AutoUpdatesEnabled: v.GetBool("auto_updates_enabled"),
		AutoUpdateInterval: v.GetDuration("auto_update_interval"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError("app", "invalid configuration", err)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(flags Flags) {
	c.Verbose = flags.Verbose
	c.Quiet = flags.Quiet
	if flags.Format != "" {
		c.Format = strings.ToLower(flags.Format)
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.User != "" {
		c.User = strings.TrimSpace(flags.User)
	}
	if flags.Source != "" {
		c.Source = flags.Source
	}
	if flags.OnlyFavorites {
		c.OnlyFavorites = true
	}
}

// Flags are the persistent flags of the root command.
type Flags struct {
	Verbose       bool
	Quiet         bool
	Format        string
	LogLevel      string
	User          string
	Source        string
	OnlyFavorites bool
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
