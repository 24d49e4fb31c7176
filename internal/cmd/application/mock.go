// Package application provides test doubles for the command application interface.
package application

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentstation/productmap"
	app "github.com/agentstation/productmap/cmd/application"
	"github.com/agentstation/productmap/internal/metrics"
	"github.com/agentstation/productmap/pkg/snapshot"
	"github.com/agentstation/productmap/pkg/sources"
)

var _ app.Application = (*Mock)(nil)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ProductmapFunc: func(opts ...productmap.Option) (productmap.Client, error) {
//	        return productmap.New(source, opts...)
//	    },
//	}
//	cmd := search.NewCommand(mock)
//	// ... test command
type Mock struct {
	ProductmapFunc    func(opts ...productmap.Option) (productmap.Client, error)
	SourceFunc        func(ctx context.Context) (sources.Source, error)
	SnapshotStoreFunc func(userID string) (*snapshot.Store, error)
	MetricsFunc       func() *metrics.Prometheus
	LoggerFunc        func() *zerolog.Logger
	OutputFormatFunc  func() string
	VersionFunc       func() string
	CommitFunc        func() string
	DateFunc          func() string
	BuiltByFunc       func() string
}

// Productmap returns an engine using the mock function or nil.
func (m *Mock) Productmap(opts ...productmap.Option) (productmap.Client, error) {
	if m.ProductmapFunc != nil {
		return m.ProductmapFunc(opts...)
	}
	return nil, nil
}

// Source returns a source using the mock function or nil.
func (m *Mock) Source(ctx context.Context) (sources.Source, error) {
	if m.SourceFunc != nil {
		return m.SourceFunc(ctx)
	}
	return nil, nil
}

// SnapshotStore returns a store using the mock function or nil.
func (m *Mock) SnapshotStore(userID string) (*snapshot.Store, error) {
	if m.SnapshotStoreFunc != nil {
		return m.SnapshotStoreFunc(userID)
	}
	return nil, nil
}

// Metrics returns a collector using the mock function or one on a fresh registry.
func (m *Mock) Metrics() *metrics.Prometheus {
	if m.MetricsFunc != nil {
		return m.MetricsFunc()
	}
	return metrics.New(prometheus.NewRegistry())
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
