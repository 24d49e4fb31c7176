package productmap

import (
	"github.com/agentstation/productmap/pkg/products"
)

// Compile-time interface check to ensure proper implementation.
var _ Searcher = (*client)(nil)

// Searcher filters the view.
type Searcher interface {
	// Search sets the query, recomputes the view over the full snapshot,
	// publishes it and returns it. An empty query shows everything the
	// favorites restriction allows. The query stays in effect for later
	// loads and toggles.
	Search(query string) []products.Product
}

// Search implements Searcher.
func (c *client) Search(query string) []products.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Query = query
	c.refilterLocked()
	return products.Snapshot(c.filtered).Clone()
}
