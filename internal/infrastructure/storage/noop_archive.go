package storage

import (
	"context"

	"github.com/gatetrack/backend/internal/application/ingest"
)

// Ensure NoopFileArchive implements ingest.FileArchive
var _ ingest.FileArchive = (*NoopFileArchive)(nil)

// NoopFileArchive discards files. Used when object storage is disabled in
// configuration so callers never branch on a nil archive.
type NoopFileArchive struct{}

// NewNoopFileArchive creates a no-op archive
func NewNoopFileArchive() *NoopFileArchive {
	return &NoopFileArchive{}
}

// Archive discards the file and returns an empty key
func (*NoopFileArchive) Archive(context.Context, string, []byte) (string, error) {
	return "", nil
}
