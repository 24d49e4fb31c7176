package products

import (
	"maps"
	"slices"
)

// FavoriteSet is the set of product ids a user marked as favorite.
type FavoriteSet map[string]struct{}

// NewFavoriteSet builds a set from ids.
func NewFavoriteSet(ids ...string) FavoriteSet {
	set := make(FavoriteSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (f FavoriteSet) Has(id string) bool {
	_, ok := f[id]
	return ok
}

// Add inserts id.
func (f FavoriteSet) Add(id string) {
	f[id] = struct{}{}
}

// Remove deletes id.
func (f FavoriteSet) Remove(id string) {
	delete(f, id)
}

// Len returns the number of ids.
func (f FavoriteSet) Len() int {
	return len(f)
}

// IDs returns the ids sorted ascending.
func (f FavoriteSet) IDs() []string {
	return slices.Sorted(maps.Keys(f))
}

// Merge returns a copy of snapshot with IsFavorite set to membership in set.
// A nil set clears every flag.
func Merge(snapshot Snapshot, set FavoriteSet) Snapshot {
	out := snapshot.Clone()
	for i := range out {
		out[i].IsFavorite = set.Has(out[i].ID)
	}
	return out
}
