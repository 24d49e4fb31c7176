// Package show provides the show command.
package show

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/catalog"
	"github.com/agentstation/productmap/internal/cmd/output"
)

// NewCommand creates the show command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "show <product-id>",
		Aliases: []string{"get"},
		GroupID: "core",
		Short:   "Show one product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := catalog.Load(cmd.Context(), app)
			if err != nil {
				return err
			}
			defer loaded.Close()

			p, err := loaded.Product(args[0])
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Product(cmd.OutOrStdout(), format, p)
		},
	}
}
