// Package products defines the product record, the catalog snapshot and the
// pure view projection the catalog engine publishes.
package products

import "slices"

// Product is a single catalog record.
//
// IsFavorite is derived per user at merge time. It reflects the favorite set
// of the user the snapshot was merged for and is never user independent truth.
type Product struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Images      []string `json:"images,omitempty" yaml:"images,omitempty" validate:"dive,required"`
	IsFavorite  bool     `json:"is_favorite" yaml:"is_favorite"`
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	return p
}

// Snapshot is an ordered list of products, unique by id.
type Snapshot []Product

// Clone returns a deep copy of the snapshot. A nil snapshot clones to an empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, p := range s {
		out[i] = p.Clone()
	}
	return out
}

// Find returns the product with the given id.
func (s Snapshot) Find(id string) (Product, bool) {
	for _, p := range s {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Product{}, false
}

// IDs returns the product ids in snapshot order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}

// WithFavorite returns a copy with the favorite flag of id set to favorite.
// The second result is false when id is not in the snapshot.
func (s Snapshot) WithFavorite(id string, favorite bool) (Snapshot, bool) {
	out := s.Clone()
	for i := range out {
		if out[i].ID == id {
			out[i].IsFavorite = favorite
			return out, true
		}
	}
	return out, false
}

// ClearFavorites returns a copy with every favorite flag reset.
func (s Snapshot) ClearFavorites() Snapshot {
	out := s.Clone()
	for i := range out {
		out[i].IsFavorite = false
	}
	return out
}

// Dedupe drops repeated ids, keeping the first occurrence.
func (s Snapshot) Dedupe() Snapshot {
	seen := make(map[string]struct{}, len(s))
	out := make(Snapshot, 0, len(s))
	for _, p := range s {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p.Clone())
	}
	return out
}

// Map indexes the snapshot by id.
func (s Snapshot) Map() map[string]Product {
	m := make(map[string]Product, len(s))
	for _, p := range s {
		m[p.ID] = p
	}
	return m
}
