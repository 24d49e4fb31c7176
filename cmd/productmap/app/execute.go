package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the productmap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "productmap",
		Short:   "Product catalog with per-user favorites",
		Version: a.version,
		Long: `Productmap keeps a product catalog and the favorites of a user in sync
with a catalog source. The last fetched catalog is kept in a local
snapshot so it stays available offline.

Products are read from MongoDB or from an in-memory source seeded from
a YAML file.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.productmap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringP("user", "u", "", "user whose favorites are loaded")
	flags.String("source", "", "catalog source: mongodb, memory")
	flags.Bool("only-favorites", false, "restrict views to favorite products")

	rootCmd.SetVersionTemplate("productmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It reloads an explicit
// config file, applies the parsed flags, validates the result and
// reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := LoadConfigFile(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(Flags{
		Verbose:       mustGetBool(cmd, "verbose"),
		Quiet:         mustGetBool(cmd, "quiet"),
		Format:        mustGetString(cmd, "format"),
		LogLevel:      mustGetString(cmd, "log-level"),
		User:          mustGetString(cmd, "user"),
		Source:        mustGetString(cmd, "source"),
		OnlyFavorites: mustGetBool(cmd, "only-favorites"),
	})

	logger := NewLogger(a.config)
	a.logger = &logger

	return a.config.Validate()
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateLoadCommand())
	rootCmd.AddCommand(a.CreateSearchCommand())
	rootCmd.AddCommand(a.CreateShowCommand())
	rootCmd.AddCommand(a.CreateFavoriteCommand())
	rootCmd.AddCommand(a.CreateServeCommand())

	// Management commands
	rootCmd.AddCommand(a.CreateSeedCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
