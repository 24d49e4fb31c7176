package sources

import (
	"github.com/agentstation/productmap/pkg/constants"
)

// ListOptions configures ListProducts.
type ListOptions struct {
	OrderBy string // field to order by, ascending
	Limit   int    // maximum number of products, 0 means DefaultPageSize
}

// ListOption configures ListOptions.
type ListOption func(*ListOptions)

// WithOrderBy sets the ordering field.
func WithOrderBy(field string) ListOption {
	return func(o *ListOptions) {
		o.OrderBy = field
	}
}

// WithLimit caps the number of products.
func WithLimit(limit int) ListOption {
	return func(o *ListOptions) {
		o.Limit = limit
	}
}

// NewListOptions returns options ordered by name with the default page size.
func NewListOptions(opts ...ListOption) ListOptions {
	o := ListOptions{
		OrderBy: constants.OrderByName,
		Limit:   constants.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o.Normalized()
}

// Normalized fills unset fields with defaults and clamps Limit.
func (o ListOptions) Normalized() ListOptions {
	if o.OrderBy == "" {
		o.OrderBy = constants.OrderByName
	}
	if o.Limit <= 0 {
		o.Limit = constants.DefaultPageSize
	}
	if o.Limit > constants.MaxPageSize {
		o.Limit = constants.MaxPageSize
	}
	return o
}
