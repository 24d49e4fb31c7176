// Package filter provides query parameter parsing and pagination for the
// product endpoints.
package filter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/products"
)

// Default and maximum page sizes of a list response.
const (
	DefaultLimit = 100
	MaxLimit     = constants.MaxPageSize
)

// ProductQuery contains the list parameters of GET /products.
type ProductQuery struct {
	// View
	Favorites bool
	Query     string

	// Pagination
	Limit  int
	Offset int
}

// ParseProductQuery extracts the list parameters from an HTTP request.
// Malformed values fall back to their defaults.
func ParseProductQuery(r *http.Request) ProductQuery {
	q := r.URL.Query()

	query := ProductQuery{
		Favorites: parseBoolOrDefault(q.Get("favorites"), false),
		Query:     strings.TrimSpace(q.Get("q")),
		Limit:     parseIntOrDefault(q.Get("limit"), DefaultLimit),
		Offset:    parseIntOrDefault(q.Get("offset"), 0),
	}

	if query.Limit <= 0 {
		query.Limit = DefaultLimit
	}
	if query.Limit > MaxLimit {
		query.Limit = MaxLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	return query
}

// ParseFavorites reads the favorites view flag of a request.
func ParseFavorites(r *http.Request) bool {
	return parseBoolOrDefault(r.URL.Query().Get("favorites"), false)
}

// Page returns the window of list selected by Limit and Offset.
func (q ProductQuery) Page(list []products.Product) []products.Product {
	if q.Offset >= len(list) {
		return []products.Product{}
	}
	end := q.Offset + q.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[q.Offset:end]
}

// CacheKey identifies the response of q for a user.
func (q ProductQuery) CacheKey(userID string) string {
	return "products:" + userID + ":" + strconv.FormatBool(q.Favorites) + ":" +
		strconv.Itoa(q.Limit) + ":" + strconv.Itoa(q.Offset) + ":" + strings.ToLower(q.Query)
}

// parseIntOrDefault parses an integer or returns default.
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}

// parseBoolOrDefault parses a boolean or returns default.
func parseBoolOrDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return def
}
