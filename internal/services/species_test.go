package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTrefle(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/plants":
			w.Write([]byte(`{"data":[{"id":1,"common_name":"Evergreen oak","scientific_name":"Quercus rotundifolia","family":"Fagaceae","year":1785}]}`))
		case "/api/v1/plants/search":
			assert.Equal(t, "monstera", r.URL.Query().Get("q"))
			w.Write([]byte(`{"data":[{"id":2,"common_name":null,"scientific_name":"Monstera deliciosa","image_url":"https://example.com/m.jpg"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSearchBlankQueryListsDefaultPage(t *testing.T) {
	srv, _ := fakeTrefle(t, http.StatusOK)
	lookup := NewSpeciesLookup(srv.URL, "secret", nil)

	records, err := lookup.Search(context.Background(), "  ")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Quercus rotundifolia", records[0].ScientificName)
	require.NotNil(t, records[0].Year)
	assert.Equal(t, 1785, *records[0].Year)
}

func TestSearchQueryUsesSearchEndpoint(t *testing.T) {
	srv, _ := fakeTrefle(t, http.StatusOK)
	lookup := NewSpeciesLookup(srv.URL, "secret", nil)

	records, err := lookup.Search(context.Background(), "monstera")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Monstera deliciosa", records[0].ScientificName)
	assert.Empty(t, records[0].CommonName)
	assert.Nil(t, records[0].Year)
}

func TestSearchUpstreamFailure(t *testing.T) {
	srv, _ := fakeTrefle(t, http.StatusInternalServerError)
	lookup := NewSpeciesLookup(srv.URL, "secret", nil)

	_, err := lookup.Search(context.Background(), "monstera")
	var lerr *RemoteLookupError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, http.StatusInternalServerError, lerr.StatusCode)
}

func TestSearchServesRepeatQueriesFromCache(t *testing.T) {
	srv, calls := fakeTrefle(t, http.StatusOK)
	lookup := NewSpeciesLookup(srv.URL, "secret", NewMemoryCache())
	ctx := context.Background()

	first, err := lookup.Search(ctx, "monstera")
	require.NoError(t, err)
	second, err := lookup.Search(ctx, "Monstera")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSpeciesCacheKey(t *testing.T) {
	assert.Equal(t, "species:monstera", speciesCacheKey("Monstera"))
}
