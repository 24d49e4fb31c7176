package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/productmap/cmd/productmap/cmd/favorite"
	"github.com/agentstation/productmap/cmd/productmap/cmd/load"
	"github.com/agentstation/productmap/cmd/productmap/cmd/search"
	"github.com/agentstation/productmap/cmd/productmap/cmd/seed"
	"github.com/agentstation/productmap/cmd/productmap/cmd/serve"
	"github.com/agentstation/productmap/cmd/productmap/cmd/show"
)

// CreateLoadCommand creates the load command with app dependencies.
func (a *App) CreateLoadCommand() *cobra.Command {
	return load.NewCommand(a)
}

// CreateSearchCommand creates the search command with app dependencies.
func (a *App) CreateSearchCommand() *cobra.Command {
	return search.NewCommand(a)
}

// CreateShowCommand creates the show command with app dependencies.
func (a *App) CreateShowCommand() *cobra.Command {
	return show.NewCommand(a)
}

// CreateFavoriteCommand creates the favorite command with app dependencies.
func (a *App) CreateFavoriteCommand() *cobra.Command {
	return favorite.NewCommand(a)
}

// CreateServeCommand creates the serve command with app dependencies.
func (a *App) CreateServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// CreateSeedCommand creates the seed command with app dependencies.
func (a *App) CreateSeedCommand() *cobra.Command {
	return seed.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("productmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
