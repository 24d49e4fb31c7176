package memory

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
)

// Seed is the YAML fixture format:
//
//	products:
//	  - id: p1
//	    name: Apple
//	    images: [apple.png]
//	favorites:
//	  user-1: [p1]
type Seed struct {
	Products  []products.Product  `yaml:"products" validate:"dive"`
	Favorites map[string][]string `yaml:"favorites" validate:"dive,keys,required,endkeys,dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseSeed decodes and validates a YAML seed.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.WrapParse("yaml", "seed", err)
	}
	if err := validate.Struct(&seed); err != nil {
		return nil, errors.WrapValidation("seed", err)
	}

	seen := make(map[string]struct{}, len(seed.Products))
	for _, p := range seed.Products {
		if _, dup := seen[p.ID]; dup {
			return nil, errors.NewValidationError("products.id", p.ID, "duplicate product id")
		}
		seen[p.ID] = struct{}{}
	}
	for user, ids := range seed.Favorites {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				return nil, errors.NewValidationError("favorites."+user, id, "unknown product id")
			}
		}
	}
	return &seed, nil
}

// LoadSeed reads and parses the seed file at path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return seed, nil
}
