// Package storage uploads user images to a blob backend and resolves
// viewable URLs for them.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a blob id is unknown to the backend.
var ErrNotFound = errors.New("file not found")

// BlobStore is the file store behind plant and post images. Ids are unique
// within a bucket.
//
// Signed URLs expire, so documents store the bucket and id and resolve a
// link with LinkURL each time they are read.
type BlobStore interface {
	CreateFile(ctx context.Context, bucket, filename string, r io.Reader) (string, error)
	// FileViewURL returns ErrNotFound for unknown ids.
	FileViewURL(ctx context.Context, bucket, id string) (string, error)
	// LinkURL builds a view URL without checking that the blob exists.
	LinkURL(ctx context.Context, bucket, id string) (string, error)
}

func newFileID() string {
	return uuid.New().String()
}

// objectKey is the key used by the flat object stores (S3, GCS).
func objectKey(bucket, id string) string {
	return path.Join(bucket, id)
}

func contentTypeOf(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
