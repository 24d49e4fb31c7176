// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/cmd/emoji"
	"github.com/agentstation/productmap/pkg/products"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// FavoriteMark marks favorite products in tables.
const FavoriteMark = emoji.Favorite

// ProductsToTableData converts products to table format.
func ProductsToTableData(list []products.Product, showDetails bool) Data {
	headers := []string{"", "ID", "Name"}
	align := []Align{AlignCenter, AlignLeft, AlignLeft}
	if showDetails {
		headers = append(headers, "Images", "Description")
		align = append(align, AlignRight, AlignLeft)
	}

	rows := make([][]string, 0, len(list))
	for _, p := range list {
		row := []string{favoriteCell(p.IsFavorite), p.ID, p.Name}
		if showDetails {
			row = append(row, strconv.Itoa(len(p.Images)), Truncate(p.Description, 80))
		}
		rows = append(rows, row)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: align,
	}
}

// ProductToTableData converts one product to a property table.
func ProductToTableData(p products.Product) Data {
	images := "-"
	if len(p.Images) > 0 {
		images = strings.Join(p.Images, "\n")
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", p.ID},
			{"Name", p.Name},
			{"Favorite", strconv.FormatBool(p.IsFavorite)},
			{"Description", orDash(p.Description)},
			{"Images", images},
		},
	}
}

// StateToTableData converts an engine state to a property table.
func StateToTableData(s productmap.State) Data {
	updated := "-"
	if !s.UpdatedAt.IsZero() {
		updated = s.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"State", label(s.LoadState.String())},
			{"Origin", label(string(s.Origin))},
			{"Products", strconv.Itoa(s.Products)},
			{"Visible", strconv.Itoa(s.Visible)},
			{"Only Favorites", strconv.FormatBool(s.OnlyFavorites)},
			{"Query", orDash(s.Query)},
			{"Owner", orDash(s.Owner)},
			{"Updated", updated},
			{"Last Error", orDash(s.LastError)},
		},
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if s == "" {
		return "-"
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func favoriteCell(favorite bool) string {
	if favorite {
		return FavoriteMark
	}
	return ""
}

var title = cases.Title(language.English)

// label turns an enum value like "no_user" into "No User".
func label(s string) string {
	return title.String(strings.ReplaceAll(s, "_", " "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
