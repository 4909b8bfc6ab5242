package services

import (
	"context"
	"errors"
	"io"

	"github.com/planthead/planthead-backend/internal/models"
	"github.com/planthead/planthead-backend/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Upload is one incoming file.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Uploads stores user files in the blob store and resolves their URLs.
type Uploads struct {
	blobs storage.BlobStore
}

func NewUploads(blobs storage.BlobStore) *Uploads {
	return &Uploads{blobs: blobs}
}

// FileLinker turns stored file references into view URLs.
type FileLinker interface {
	LinkRefs(ctx context.Context, refs []string) ([]string, error)
}

// Store uploads one file and returns its id and view URL.
func (s *Uploads) Store(ctx context.Context, bucket string, u Upload) (models.StoredFile, error) {
	f, err := u.Open()
	if err != nil {
		return models.StoredFile{}, err
	}
	defer f.Close()

	id, err := s.blobs.CreateFile(ctx, bucket, u.Filename, f)
	if err != nil {
		return models.StoredFile{}, &RemoteServiceError{Op: "upload file", Err: err}
	}
	url, err := s.blobs.LinkURL(ctx, bucket, id)
	if err != nil {
		return models.StoredFile{}, &RemoteServiceError{Op: "resolve file url", Err: err}
	}
	return models.StoredFile{ID: id, Bucket: bucket, URL: url}, nil
}

// StoreAll uploads files in parallel and returns their references in input
// order. The first failure cancels the remaining uploads.
func (s *Uploads) StoreAll(ctx context.Context, bucket string, uploads []Upload) ([]string, error) {
	refs := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		g.Go(func() error {
			file, err := s.Store(gctx, bucket, u)
			if err != nil {
				return err
			}
			refs[i] = file.Ref()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// ViewURL resolves the URL of a stored file.
func (s *Uploads) ViewURL(ctx context.Context, bucket, id string) (string, error) {
	url, err := s.blobs.FileViewURL(ctx, bucket, id)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &RemoteServiceError{Op: "resolve file url", Err: err}
	}
	return url, nil
}

// LinkRefs builds a fresh view URL for each reference. Values that are not
// "<bucket>/<id>" references are returned unchanged.
func (s *Uploads) LinkRefs(ctx context.Context, refs []string) ([]string, error) {
	urls := make([]string, len(refs))
	for i, ref := range refs {
		bucket, id, ok := models.ParseFileRef(ref)
		if !ok {
			urls[i] = ref
			continue
		}
		url, err := s.blobs.LinkURL(ctx, bucket, id)
		if err != nil {
			return nil, &RemoteServiceError{Op: "resolve file url", Err: err}
		}
		urls[i] = url
	}
	return urls, nil
}
