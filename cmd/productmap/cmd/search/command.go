// Package search provides the search command.
package search

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/catalog"
	"github.com/agentstation/productmap/internal/cmd/output"
)

// Flags holds the search flags.
type Flags struct {
	Favorites bool
	Limit     int
}

// NewCommand creates the search command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "search [query]",
		Aliases: []string{"list", "ls"},
		GroupID: "core",
		Short:   "Search products by name",
		Long: `Search loads the catalog and lists the products whose name contains
the query, ignoring case. Without a query every product is listed.`,
		Example: `  productmap search                     # all products
  productmap search apple               # names containing "apple"
  productmap search --favorites         # favorites only
  productmap search berry -o wide       # with images and descriptions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}

			var opts []productmap.Option
			if flags.Favorites {
				opts = append(opts, productmap.WithOnlyFavorites(true))
			}
			loaded, err := catalog.Load(cmd.Context(), app, opts...)
			if err != nil {
				return err
			}
			defer loaded.Close()

			list := loaded.Search(query)
			if flags.Limit > 0 && len(list) > flags.Limit {
				list = list[:flags.Limit]
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Products(cmd.OutOrStdout(), format, list)
		},
	}

	cmd.Flags().BoolVarP(&flags.Favorites, "favorites", "f", false, "Only favorite products")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0, "Limit number of results")

	return cmd
}
