package products

import "strings"

// Filter is the view filter applied over a snapshot.
type Filter struct {
	OnlyFavorite bool   `json:"only_favorite"`
	Query        string `json:"query"`
}

// Apply projects snapshot through the filter.
func (f Filter) Apply(snapshot Snapshot) []Product {
	return Project(snapshot, f.OnlyFavorite, f.Query)
}

// Project derives the visible list from snapshot. It keeps favorites only when
// onlyFavorite is set, then keeps names containing query, ignoring case. Order
// is preserved and the result is always a fresh slice, so projecting an
// already projected list with the same arguments yields the same list.
func Project(snapshot Snapshot, onlyFavorite bool, query string) []Product {
	needle := strings.ToLower(query)
	out := make([]Product, 0, len(snapshot))
	for _, p := range snapshot {
		if onlyFavorite && !p.IsFavorite {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
