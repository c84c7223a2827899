package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/OffCrazyFreak/Pogled-app/data_access"
	"github.com/OffCrazyFreak/Pogled-app/models"
)

// ----- Fakes -----

type fakeCatalog struct {
	pages      map[int][]data_access.TMDBMovie
	listErr    error
	detailErr  map[int]error
	pagesAsked []int
}

func (f *fakeCatalog) GetPopularMovies(ctx context.Context, page int) ([]data_access.TMDBMovie, error) {
	f.pagesAsked = append(f.pagesAsked, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pages[page], nil
}

func (f *fakeCatalog) GetMovieDetails(ctx context.Context, tmdbID int) (*data_access.TMDBMovieDetail, error) {
	if err := f.detailErr[tmdbID]; err != nil {
		return nil, err
	}
	return &data_access.TMDBMovieDetail{
		ID:     tmdbID,
		Genres: []data_access.TMDBGenre{{ID: 18, Name: "Drama"}, {ID: 28, Name: "Action"}},
	}, nil
}

type fakeRatings struct {
	ratings map[string]float64
	errs    map[string]error
}

func (f *fakeRatings) GetIMDBRating(ctx context.Context, title string, year int) (float64, error) {
	if err := f.errs[title]; err != nil {
		return 0, err
	}
	return f.ratings[title], nil
}

type fakeTrailers struct {
	trailers map[string]*models.TrailerInfo
}

func (f *fakeTrailers) GetTrailerInfo(ctx context.Context, movieTitle string) (*models.TrailerInfo, error) {
	return f.trailers[movieTitle], nil
}

type fakeTrakt struct {
	infos map[string]*models.TraktInfo
}

func (f *fakeTrakt) GetTraktInfo(ctx context.Context, movieTitle string, year int) (*models.TraktInfo, error) {
	return f.infos[movieTitle], nil
}

type fakeIngestStore struct {
	created    []models.Movie
	deletedAll int
	createErr  map[string]error
	// ops records the call order so tests can assert the clear happens first.
	ops []string
}

func (f *fakeIngestStore) DeleteAll(ctx context.Context) (int64, error) {
	f.deletedAll++
	f.ops = append(f.ops, "deleteAll")
	n := int64(len(f.created))
	f.created = nil
	return n, nil
}

func (f *fakeIngestStore) Create(ctx context.Context, movie *models.Movie) error {
	if err := f.createErr[movie.Title]; err != nil {
		return err
	}
	f.created = append(f.created, *movie)
	f.ops = append(f.ops, "create:"+movie.Title)
	return nil
}

// ----- Helpers -----

func tmdbPage(startID, count int) []data_access.TMDBMovie {
	movies := make([]data_access.TMDBMovie, count)
	for i := range movies {
		id := startID + i
		movies[i] = data_access.TMDBMovie{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			ReleaseDate: "2020-06-15",
			PosterPath:  "/p.jpg",
			VoteAverage: 7.3,
		}
	}
	return movies
}

func newIngestService(catalog *fakeCatalog, ratings *fakeRatings, trailers *fakeTrailers, trakt *fakeTrakt, store *fakeIngestStore) *IngestService {
	if ratings == nil {
		ratings = &fakeRatings{}
	}
	if trailers == nil {
		trailers = &fakeTrailers{}
	}
	if trakt == nil {
		trakt = &fakeTrakt{}
	}
	// Unthrottled limiter so tests run instantly.
	return NewIngestService(catalog, ratings, trailers, trakt, store, rate.NewLimiter(rate.Inf, 1), zerolog.Nop())
}

// ----- Tests -----

func TestIngestPersistsExactlyLimit(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 20)}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Total != 5 || stats.New != 5 || stats.Errors != 0 {
		t.Errorf("stats = %+v, want total=5 new=5 errors=0", stats)
	}
	if len(store.created) != 5 {
		t.Fatalf("persisted %d movies, want 5", len(store.created))
	}

	seen := make(map[string]bool)
	for _, m := range store.created {
		key := m.Source + "/" + m.SourceID
		if seen[key] {
			t.Errorf("duplicate (source, sourceId): %s", key)
		}
		seen[key] = true
		if m.Source != models.SourceTMDB {
			t.Errorf("source = %q, want %q", m.Source, models.SourceTMDB)
		}
		if m.Year != 2020 {
			t.Errorf("year = %d, want 2020", m.Year)
		}
		if m.Genre != "Drama, Action" {
			t.Errorf("genre = %q, want \"Drama, Action\"", m.Genre)
		}
		if m.FetchedAt.IsZero() {
			t.Error("fetchedAt not set")
		}
	}
}

func TestIngestAccumulatesPagesUpToCap(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{
		1: tmdbPage(1, 3),
		2: tmdbPage(100, 3),
		3: tmdbPage(200, 3),
	}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(catalog.pagesAsked) != 3 {
		t.Errorf("asked %v pages, want 3", catalog.pagesAsked)
	}
	if stats.Total != 8 || len(store.created) != 8 {
		t.Errorf("total = %d, created = %d, want 8 each", stats.Total, len(store.created))
	}
}

func TestIngestFewerCandidatesThanLimit(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 4)}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 4 || len(store.created) != 4 {
		t.Errorf("total = %d, created = %d, want 4 each", stats.Total, len(store.created))
	}
}

func TestIngestClearsBeforeRepopulating(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 2)}}
	store := &fakeIngestStore{
		created: []models.Movie{{Title: "Stale", Source: models.SourceTMDB, SourceID: "999"}},
	}

	if _, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.deletedAll != 1 {
		t.Fatalf("deleteAll called %d times, want 1", store.deletedAll)
	}
	if len(store.ops) == 0 || store.ops[0] != "deleteAll" {
		t.Errorf("ops = %v, want deleteAll first", store.ops)
	}
	for _, m := range store.created {
		if m.Title == "Stale" {
			t.Error("stale record survived the refresh")
		}
	}
}

// A run where no candidate resolves an IMDB rating still repopulates the full
// batch as unrated records; the refresh must never leave the catalog empty.
func TestIngestPersistsWhenRatingsUnavailable(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 5)}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, &fakeRatings{}, nil, nil, store).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Errors != 0 || stats.New != 5 {
		t.Errorf("stats = %+v, want errors=0 new=5", stats)
	}
	if stats.WithoutIMDB != 5 {
		t.Errorf("withoutIMDB = %d, want 5", stats.WithoutIMDB)
	}
	if len(store.created) != 5 {
		t.Fatalf("persisted %d movies, want 5", len(store.created))
	}
	for _, m := range store.created {
		if m.IMDBRating != 0 {
			t.Errorf("movie %q has rating %v, want 0", m.Title, m.IMDBRating)
		}
	}
}

func TestIngestIsolatesPerCandidateFailures(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 3)}}
	ratings := &fakeRatings{errs: map[string]error{"Movie 2": errors.New("omdb down")}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, ratings, nil, nil, store).Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("per-candidate failure must not abort the run: %v", err)
	}

	if stats.Errors != 1 {
		t.Errorf("errors = %d, want 1", stats.Errors)
	}
	if stats.New != 2 || len(store.created) != 2 {
		t.Errorf("new = %d, created = %d, want 2 each", stats.New, len(store.created))
	}
	for _, m := range store.created {
		if m.Title == "Movie 2" {
			t.Error("failed candidate was persisted")
		}
	}
}

func TestIngestPersistFailureCountedAndSkipped(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 3)}}
	store := &fakeIngestStore{createErr: map[string]error{"Movie 1": errors.New("duplicate key")}}

	stats, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Errors != 1 || stats.New != 2 {
		t.Errorf("stats = %+v, want errors=1 new=2", stats)
	}
}

func TestIngestFatalWhenListingFails(t *testing.T) {
	catalog := &fakeCatalog{listErr: errors.New("tmdb unreachable")}
	store := &fakeIngestStore{}

	if _, err := newIngestService(catalog, nil, nil, nil, store).Run(context.Background(), 5); err == nil {
		t.Fatal("expected a fatal error when the candidate listing fails")
	}
	if store.deletedAll != 0 {
		t.Error("collection was cleared even though the listing failed")
	}
}

func TestIngestEnrichmentCounters(t *testing.T) {
	catalog := &fakeCatalog{pages: map[int][]data_access.TMDBMovie{1: tmdbPage(1, 2)}}
	ratings := &fakeRatings{ratings: map[string]float64{"Movie 1": 7.9}}
	trailers := &fakeTrailers{trailers: map[string]*models.TrailerInfo{
		"Movie 1": {VideoID: "abc123", Title: "Movie 1 Trailer", ChannelTitle: "Studio", ViewCount: 1000, LikeCount: 50},
	}}
	trakt := &fakeTrakt{infos: map[string]*models.TraktInfo{
		"Movie 2": {TraktID: 42, Slug: "movie-2", Rating: 7.5, Watchers: 12},
	}}
	store := &fakeIngestStore{}

	stats, err := newIngestService(catalog, ratings, trailers, trakt, store).Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.WithIMDB != 1 || stats.WithoutIMDB != 1 {
		t.Errorf("IMDB counters = %d/%d, want 1/1", stats.WithIMDB, stats.WithoutIMDB)
	}
	if stats.WithYouTube != 1 || stats.WithoutYouTube != 1 {
		t.Errorf("YouTube counters = %d/%d, want 1/1", stats.WithYouTube, stats.WithoutYouTube)
	}
	if stats.WithTrakt != 1 || stats.WithoutTrakt != 1 {
		t.Errorf("Trakt counters = %d/%d, want 1/1", stats.WithTrakt, stats.WithoutTrakt)
	}

	var first, second models.Movie
	for _, m := range store.created {
		switch m.Title {
		case "Movie 1":
			first = m
		case "Movie 2":
			second = m
		}
	}
	if first.IMDBRating != 7.9 || first.YouTubeVideoID != "abc123" || first.YouTubeViews != 1000 {
		t.Errorf("Movie 1 enrichment not merged: %+v", first)
	}
	if second.TraktID != 42 || second.TraktSlug != "movie-2" || second.TraktWatchers != 12 {
		t.Errorf("Movie 2 Trakt bundle not merged: %+v", second)
	}
}
