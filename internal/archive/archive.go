// Package archive stores the artifacts a simulation run leaves behind, the
// trade ledger and stats JSON, on a local directory or an S3-compatible
// bucket.
package archive

import "context"

// Storage is the interface archive backends implement.
type Storage interface {
	// Write stores data at the given path.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
