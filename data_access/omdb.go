package data_access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// OMDBClient resolves IMDB ratings by title. Without an API key all lookups
// return nil, same as the YouTube and Trakt clients, so ingestion degrades to
// unrated records instead of wiping the catalog and persisting nothing.
type OMDBClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewOMDBClient(apiKey, baseURL string) *OMDBClient {
	return &OMDBClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchByTitle looks a movie up by title and optional year. Returns nil when
// OMDB does not know the title.
func (c *OMDBClient) FetchByTitle(ctx context.Context, title string, year int) (*models.OmdbResponse, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/?apikey=%s&t=%s", c.baseURL, c.apiKey, url.QueryEscape(title))
	if year > 0 {
		u += fmt.Sprintf("&y=%d", year)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request to OMDB API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OMDB API returned status %d", resp.StatusCode)
	}

	var omdbResp models.OmdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&omdbResp); err != nil {
		return nil, fmt.Errorf("error decoding OMDB response: %v", err)
	}

	// OMDB signals "not found" with Response=False and HTTP 200.
	if omdbResp.Response == "False" {
		return nil, nil
	}

	return &omdbResp, nil
}

// GetIMDBRating returns the IMDB rating for a title, or 0 when the title is
// unknown or carries no rating. Lookup failures are returned as errors so the
// pipeline can count them.
func (c *OMDBClient) GetIMDBRating(ctx context.Context, title string, year int) (float64, error) {
	omdbResp, err := c.FetchByTitle(ctx, title, year)
	if err != nil {
		return 0, err
	}
	if omdbResp == nil || omdbResp.ImdbRating == "" || omdbResp.ImdbRating == "N/A" {
		return 0, nil
	}

	rating, err := strconv.ParseFloat(omdbResp.ImdbRating, 64)
	if err != nil {
		return 0, nil
	}
	return rating, nil
}
