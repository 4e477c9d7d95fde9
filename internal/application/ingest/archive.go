package ingest

import "context"

// FileArchive stores raw uploaded files so disputed uploads can be re-read
// later. Archival is best effort; a failed archive never fails the upload.
type FileArchive interface {
	// Archive stores the file and returns its storage key.
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}
