package config

import "context"

// Loader is the interface for a format-specific document loader.
type Loader interface {
	// Load reads every document file found under the given paths and
	// translates them into a single document.
	Load(ctx context.Context, paths ...string) (*Document, error)

	// Parse translates one in-memory source file.
	Parse(ctx context.Context, filename string, src []byte) (*Document, error)
}
