package data_access

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

const tmdbPosterBaseURL = "https://image.tmdb.org/t/p/w500"

// TMDBClient is the primary catalog client. Popular listings seed the
// ingestion pipeline; the detail endpoint supplies genre names.
type TMDBClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewTMDBClient(apiKey, baseURL string) *TMDBClient {
	return &TMDBClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// TMDBMovie is one entry of the popular-movies listing.
type TMDBMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

type tmdbPopularResponse struct {
	Page       int         `json:"page"`
	Results    []TMDBMovie `json:"results"`
	TotalPages int         `json:"total_pages"`
}

// TMDBMovieDetail carries the fields the listing omits.
type TMDBMovieDetail struct {
	ID     int         `json:"id"`
	Title  string      `json:"title"`
	Genres []TMDBGenre `json:"genres"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GetPopularMovies fetches one page of the popular-movies listing.
func (c *TMDBClient) GetPopularMovies(ctx context.Context, page int) ([]TMDBMovie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("TMDB API key not found")
	}

	url := fmt.Sprintf("%s/movie/popular?api_key=%s&page=%d", c.baseURL, c.apiKey, page)

	var result tmdbPopularResponse
	if err := c.doGet(ctx, url, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetMovieDetails fetches extended detail for one movie, including genres.
func (c *TMDBClient) GetMovieDetails(ctx context.Context, tmdbID int) (*TMDBMovieDetail, error) {
	url := fmt.Sprintf("%s/movie/%d?api_key=%s", c.baseURL, tmdbID, c.apiKey)

	var detail TMDBMovieDetail
	if err := c.doGet(ctx, url, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Year parses the release year out of the listing's release date, 0 when the
// date is absent or malformed.
func (m TMDBMovie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	t, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// ToMovie maps a popular-listing entry onto a catalog record. Enrichment
// fields are filled in later by the pipeline.
func (m TMDBMovie) ToMovie() models.Movie {
	poster := ""
	if m.PosterPath != "" {
		poster = tmdbPosterBaseURL + m.PosterPath
	}
	return models.Movie{
		Title:     m.Title,
		Year:      m.Year(),
		Poster:    poster,
		Rating:    m.VoteAverage,
		Source:    models.SourceTMDB,
		SourceID:  fmt.Sprintf("%d", m.ID),
		FetchedAt: time.Now(),
	}
}

func (c *TMDBClient) doGet(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to TMDB API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding TMDB response: %v", err)
	}
	return nil
}
