package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/planthead/planthead-backend/internal/models"
)

const (
	DefaultTrefleBaseURL = "https://trefle.io"
	// SpeciesCacheTTL keeps lookups for the shortest allowed cache lifetime.
	SpeciesCacheTTL = MinCacheTTL
	trefleTimeout   = 10 * time.Second
)

// SpeciesLookup proxies searches to the Trefle plant database. The API token
// never leaves the server.
type SpeciesLookup struct {
	client  *http.Client
	baseURL string
	token   string
	cache   Cache
}

// NewSpeciesLookup builds a Trefle client. cache may be nil.
func NewSpeciesLookup(baseURL, token string, cache Cache) *SpeciesLookup {
	if baseURL == "" {
		baseURL = DefaultTrefleBaseURL
	}
	return &SpeciesLookup{
		client:  &http.Client{Timeout: trefleTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		cache:   cache,
	}
}

type trefleResponse struct {
	Data []models.SpeciesRecord `json:"data"`
}

func speciesCacheKey(query string) string {
	return CacheKey("species", strings.ToLower(query))
}

// Search returns species matching query. A blank query returns the default
// listing page.
func (s *SpeciesLookup) Search(ctx context.Context, query string) ([]models.SpeciesRecord, error) {
	query = strings.TrimSpace(query)
	key := speciesCacheKey(query)

	if s.cache != nil {
		var cached []models.SpeciesRecord
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("⚠️  Species cache read failed: %v", err)
		}
		if hit {
			return cached, nil
		}
	}

	records, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, records, SpeciesCacheTTL); err != nil {
			log.Printf("⚠️  Species cache write failed: %v", err)
		}
	}
	return records, nil
}

func (s *SpeciesLookup) fetch(ctx context.Context, query string) ([]models.SpeciesRecord, error) {
	params := url.Values{}
	params.Set("token", s.token)
	endpoint := s.baseURL + "/api/v1/plants"
	if query != "" {
		endpoint += "/search"
		params.Set("q", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &RemoteLookupError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &RemoteLookupError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteLookupError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var body trefleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RemoteLookupError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Data == nil {
		body.Data = []models.SpeciesRecord{}
	}
	return body.Data, nil
}
