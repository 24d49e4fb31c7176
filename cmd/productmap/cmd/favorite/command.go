// Package favorite provides the favorite command.
package favorite

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/catalog"
	"github.com/agentstation/productmap/internal/cmd/emoji"
	"github.com/agentstation/productmap/internal/cmd/output"
	"github.com/agentstation/productmap/pkg/errors"
)

// NewCommand creates the favorite command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <product-id>",
		Aliases: []string{"fav"},
		GroupID: "core",
		Short:   "Toggle whether a product is a favorite",
		Long: `Favorite flips the favorite flag of a product for the configured user
and writes the change to the catalog source. The local catalog only
changes once the source accepted the write.`,
		Example: `  productmap favorite p-123 --user alice`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loaded, err := catalog.Load(ctx, app)
			if err != nil {
				return err
			}
			defer loaded.Close()

			outcome, err := loaded.ToggleFavorite(ctx, args[0]).Wait(ctx)
			if err != nil {
				return err
			}
			if outcome == productmap.OutcomeNoUser {
				return errors.NewValidationError("user", "", "a user is required to change favorites")
			}

			p, err := loaded.Product(args[0])
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if format.IsTable() {
				state := "removed from"
				if p.IsFavorite {
					state = "added to"
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s favorites\n", emoji.Success, p.Name, state)
			}
			return output.Product(cmd.OutOrStdout(), format, p)
		},
	}
}
