package output

import (
	"io"

	"github.com/agentstation/productmap"
	"github.com/agentstation/productmap/internal/cmd/table"
	"github.com/agentstation/productmap/pkg/products"
)

// Products writes a product list. Table formats render one row per product;
// the wide format adds image counts and descriptions.
func Products(w io.Writer, format Format, list []products.Product) error {
	return write(w, format, list, func() table.Data {
		return table.ProductsToTableData(list, format == FormatWide)
	})
}

// Product writes a single product.
func Product(w io.Writer, format Format, p products.Product) error {
	return write(w, format, p, func() table.Data {
		return table.ProductToTableData(p)
	})
}

// State writes an engine state summary.
func State(w io.Writer, format Format, s productmap.State) error {
	return write(w, format, s, func() table.Data {
		return table.StateToTableData(s)
	})
}

// write formats data, rendering the table built by toTable for table formats.
func write(w io.Writer, format Format, data any, toTable func() table.Data) error {
	formatter := NewFormatter(format)
	if format.IsTable() {
		return formatter.Format(w, toTable())
	}
	return formatter.Format(w, data)
}
