package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloudinary answers the upload and Admin asset endpoints for one cloud.
type fakeCloudinary struct {
	mu     sync.Mutex
	assets map[string]bool
	forms  []map[string]string
}

func (f *fakeCloudinary) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/upload"):
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
		f.forms = append(f.forms, form)
		publicID := form["public_id"]
		f.assets[publicID] = true
		json.NewEncoder(w).Encode(map[string]string{
			"public_id":  publicID,
			"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/" + publicID + ".jpg",
		})

	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/resources/image/upload/"):
		publicID := r.URL.Path[strings.Index(r.URL.Path, "/resources/image/upload/")+len("/resources/image/upload/"):]
		if !f.assets[publicID] {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "Resource not found - " + publicID}})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"public_id":  publicID,
			"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/" + publicID + ".jpg",
		})

	default:
		http.NotFound(w, r)
	}
}

func newTestCloudinary(t *testing.T) (*Cloudinary, *fakeCloudinary) {
	t.Helper()
	fake := &fakeCloudinary{assets: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewCloudinary("demo", "key", "secret")
	require.NoError(t, err)
	c.cld.Upload.Config.API.UploadPrefix = srv.URL
	c.cld.Admin.Config.API.UploadPrefix = srv.URL
	return c, fake
}

func TestCloudinaryUsesBucketScopedPublicID(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestCloudinary(t)

	id, err := c.CreateFile(ctx, "plants", "fern.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	require.Len(t, fake.forms, 1)
	assert.Equal(t, "plants/"+id, fake.forms[0]["public_id"])
	assert.NotContains(t, fake.forms[0], "folder")

	link, err := c.LinkURL(ctx, "plants", id)
	require.NoError(t, err)
	assert.Contains(t, link, "/image/upload/plants/"+id)

	url, err := c.FileViewURL(ctx, "plants", id)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/plants/"+id+".jpg", url)
}

func TestCloudinaryFileViewURLUnknownAsset(t *testing.T) {
	c, _ := newTestCloudinary(t)

	_, err := c.FileViewURL(context.Background(), "plants", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
