// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used for status lines printed by commands.
const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Stop marks a shutdown.
	Stop = "✗"

	// Warning marks a degraded but usable result, like a catalog served from cache.
	Warning = "!"

	// Favorite marks a favorite product.
	Favorite = "★"

	// Info marks informational messages.
	Info = "i"
)
