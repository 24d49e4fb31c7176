// Package main provides the entry point for the productmap CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/productmap/cmd/productmap/app"
	"github.com/agentstation/productmap/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	runErr := application.Execute(ctx, os.Args[1:])

	// Fresh context: the signal context may be cancelled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		// Don't let a shutdown error mask the original error
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}
	if runErr != nil {
		cancel()
		shutdownCancel()
		app.ExitOnError(runErr)
	}
}
