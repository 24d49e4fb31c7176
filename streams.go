package productmap

import (
	"github.com/agentstation/productmap/pkg/products"
	"github.com/agentstation/productmap/pkg/stream"
)

// Compile-time interface check to ensure proper implementation.
var _ Streams = (*client)(nil)

// Streams exposes the engine's observable state. Each stream replays its
// latest value on subscribe and conflates bursts, so subscribers never slow
// the engine down.
type Streams interface {
	// ProductsStream carries the filtered view
	ProductsStream() stream.Reader[[]products.Product]

	// LoadingStream is true while a load is in flight
	LoadingStream() stream.Reader[bool]

	// ErrorStream carries the last error, nil when there is none
	ErrorStream() stream.Reader[error]
}

// ProductsStream implements Streams.
func (c *client) ProductsStream() stream.Reader[[]products.Product] {
	return c.productsStream
}

// LoadingStream implements Streams.
func (c *client) LoadingStream() stream.Reader[bool] {
	return c.loadingStream
}

// ErrorStream implements Streams.
func (c *client) ErrorStream() stream.Reader[error] {
	return c.errorStream
}
