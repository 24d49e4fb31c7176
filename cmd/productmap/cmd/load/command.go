// Package load provides the load command.
package load

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/catalog"
	"github.com/agentstation/productmap/internal/cmd/output"
)

// NewCommand creates the load command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "load",
		GroupID: "core",
		Short:   "Load the catalog and show the engine state",
		Long: `Load fetches the product catalog and the favorites of the configured
user from the catalog source and stores a local snapshot.

While offline the last snapshot is served instead, with favorites only
when it was saved for the same user.`,
		Example: `  productmap load --user alice
  productmap load --user alice -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := catalog.Load(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer loaded.Close()

			format := output.DetectFormat(app.OutputFormat())
			return output.State(cmd.OutOrStdout(), format, loaded.State())
		},
	}
}
