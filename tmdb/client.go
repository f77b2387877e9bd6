package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Movie represents a TMDB search match or detail record.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Lookups defines the metadata operations the cinema scheduling path uses.
type Lookups interface {
	SearchMovie(ctx context.Context, query string) (*SearchResponse, error)
	GetMovieDetails(ctx context.Context, movieID int64) (*Movie, error)
}

// Client provides read-only access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Lookups = (*Client)(nil)

// New creates a TMDB client. The zero api key is an error so a misconfigured
// deployment fails at startup rather than on first lookup.
func New(apiKey, baseURL, language string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SearchMovie searches TMDB for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)

	var payload SearchResponse
	if err := c.getJSON(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieDetails fetches movie details by TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}

	var payload Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
