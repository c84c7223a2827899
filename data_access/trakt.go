package data_access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// TraktClient talks to the Trakt.tv API. Without a client id all lookups
// return nil, same as the YouTube client.
type TraktClient struct {
	clientID string
	baseURL  string
	http     *http.Client
}

func NewTraktClient(clientID, baseURL string) *TraktClient {
	return &TraktClient{
		clientID: clientID,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type traktIDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	IMDB  string `json:"imdb"`
	TMDB  int    `json:"tmdb"`
}

type traktSearchMovie struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	IDs    traktIDs `json:"ids"`
	Rating float64  `json:"rating"`
	Votes  int      `json:"votes"`
}

type traktSearchResult struct {
	Type  string           `json:"type"`
	Movie traktSearchMovie `json:"movie"`
}

type traktMovieDetails struct {
	Certification string   `json:"certification"`
	Tagline       string   `json:"tagline"`
	Overview      string   `json:"overview"`
	Released      string   `json:"released"`
	Runtime       int      `json:"runtime"`
	Genres        []string `json:"genres"`
	Rating        float64  `json:"rating"`
	Votes         int      `json:"votes"`
}

type traktMovieStats struct {
	Watchers   int `json:"watchers"`
	Plays      int `json:"plays"`
	Collectors int `json:"collectors"`
}

// SearchMovie finds the best Trakt match for a title and optional year.
// Returns nil when nothing matches.
func (c *TraktClient) SearchMovie(ctx context.Context, movieTitle string, year int) (*traktSearchMovie, error) {
	if c.clientID == "" {
		return nil, nil
	}

	query := movieTitle
	if year > 0 {
		query = fmt.Sprintf("%s %d", movieTitle, year)
	}
	u := fmt.Sprintf("%s/search/movie?query=%s&limit=1", c.baseURL, url.QueryEscape(query))

	var results []traktSearchResult
	if err := c.doGet(ctx, u, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0].Movie, nil
}

// GetMovieDetails fetches extended detail for a Trakt id.
func (c *TraktClient) GetMovieDetails(ctx context.Context, traktID int) (*traktMovieDetails, error) {
	if c.clientID == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/movies/%d?extended=full", c.baseURL, traktID)

	var details traktMovieDetails
	if err := c.doGet(ctx, u, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetMovieStats fetches watcher/play/collector counts for a Trakt id.
func (c *TraktClient) GetMovieStats(ctx context.Context, traktID int) (*traktMovieStats, error) {
	if c.clientID == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/movies/%d/stats", c.baseURL, traktID)

	var stats traktMovieStats
	if err := c.doGet(ctx, u, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTraktInfo assembles the full Trakt enrichment bundle for a title.
// Returns nil when the title is unknown to Trakt. A failing detail or stats
// lookup degrades to a partial bundle rather than an error.
func (c *TraktClient) GetTraktInfo(ctx context.Context, movieTitle string, year int) (*models.TraktInfo, error) {
	searchResult, err := c.SearchMovie(ctx, movieTitle, year)
	if err != nil {
		return nil, err
	}
	if searchResult == nil || searchResult.IDs.Trakt == 0 {
		return nil, nil
	}

	traktID := searchResult.IDs.Trakt
	info := &models.TraktInfo{
		TraktID: traktID,
		Slug:    searchResult.IDs.Slug,
		IMDBID:  searchResult.IDs.IMDB,
		TMDBID:  searchResult.IDs.TMDB,
		Rating:  searchResult.Rating,
		Votes:   searchResult.Votes,
	}

	if details, err := c.GetMovieDetails(ctx, traktID); err == nil && details != nil {
		info.Certification = details.Certification
		info.Tagline = details.Tagline
		info.Overview = details.Overview
		info.Released = details.Released
		info.Runtime = details.Runtime
		info.Genres = details.Genres
		if info.Rating == 0 {
			info.Rating = details.Rating
		}
		if info.Votes == 0 {
			info.Votes = details.Votes
		}
	}

	if stats, err := c.GetMovieStats(ctx, traktID); err == nil && stats != nil {
		info.Watchers = stats.Watchers
		info.Plays = stats.Plays
		info.Collectors = stats.Collectors
	}

	return info, nil
}

func (c *TraktClient) doGet(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")
	req.Header.Set("trakt-api-key", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to Trakt API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Trakt API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding Trakt response: %v", err)
	}
	return nil
}
