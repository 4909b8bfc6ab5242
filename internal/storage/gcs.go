package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gstorage "cloud.google.com/go/storage"
)

// GCS stores blobs as objects named "<bucket>/<id>" in one GCS bucket.
type GCS struct {
	client    *gstorage.Client
	bucket    string
	publicURL string
}

func NewGCS(ctx context.Context, bucket, publicURL string) (*GCS, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (g *GCS) CreateFile(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	id := newFileID()
	w := g.client.Bucket(g.bucket).Object(objectKey(bucket, id)).NewWriter(ctx)
	w.ContentType = contentTypeOf(filename)

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	return id, nil
}

// LinkURL returns the public URL when one is configured and a V4 signed URL
// otherwise. It does not check that the object exists.
func (g *GCS) LinkURL(_ context.Context, bucket, id string) (string, error) {
	object := objectKey(bucket, id)
	if g.publicURL != "" {
		return g.publicURL + "/" + object, nil
	}

	url, err := g.client.Bucket(g.bucket).SignedURL(object, &gstorage.SignedURLOptions{
		Scheme:  gstorage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().UTC().Add(presignExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign GCS URL: %w", err)
	}
	return url, nil
}

func (g *GCS) FileViewURL(ctx context.Context, bucket, id string) (string, error) {
	if _, err := g.client.Bucket(g.bucket).Object(objectKey(bucket, id)).Attrs(ctx); err != nil {
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to stat GCS object: %w", err)
	}
	return g.LinkURL(ctx, bucket, id)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
