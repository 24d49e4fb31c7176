// Package seed provides the seed command.
package seed

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/cmd/emoji"
	"github.com/agentstation/productmap/internal/sources/memory"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/sources"
)

// NewCommand creates the seed command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "seed <file.yaml>",
		GroupID: "management",
		Short:   "Write products and favorites from a YAML file to the catalog source",
		Long: `Seed upserts the products of a YAML seed file into the configured
catalog source and marks the listed favorites of each user.

	products:
	  - id: p1
	    name: Apple
	    images: [apple.png]
	favorites:
	  alice: [p1]`,
		Example: `  productmap seed catalog.yaml --source mongodb`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := memory.LoadSeed(args[0])
			if err != nil {
				return err
			}
			src, err := app.Source(cmd.Context())
			if err != nil {
				return err
			}
			if err := Apply(cmd.Context(), src, seed); err != nil {
				return err
			}

			app.Logger().Info().
				Str("source", string(src.ID())).
				Int("products", len(seed.Products)).
				Int("users", len(seed.Favorites)).
				Msg("Catalog seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "%s Seeded %d products and the favorites of %d users into %s\n",
				emoji.Success, len(seed.Products), len(seed.Favorites), src.ID())
			return nil
		},
	}
}

// Apply writes seed to src. Users are seeded in name order.
func Apply(ctx context.Context, src sources.Source, seed *memory.Seed) error {
	seeder, ok := src.(sources.Seeder)
	if !ok {
		return errors.NewValidationError("source", string(src.ID()), "source does not accept catalog writes")
	}
	if err := seeder.UpsertProducts(ctx, seed.Products); err != nil {
		return errors.WrapResource("seed", "products", string(src.ID()), err)
	}

	byID := products.Snapshot(seed.Products).Map()
	users := make([]string, 0, len(seed.Favorites))
	for user := range seed.Favorites {
		users = append(users, user)
	}
	sort.Strings(users)

	for _, user := range users {
		for _, id := range seed.Favorites[user] {
			if err := src.SetFavorite(ctx, user, byID[id], true); err != nil {
				return errors.WrapResource("seed", "favorite", user+"/"+id, err)
			}
		}
	}
	return nil
}
