package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/OffCrazyFreak/Pogled-app/data_access"
	"github.com/OffCrazyFreak/Pogled-app/models"
)

// DefaultIngestLimit is the batch size used when the trigger does not name
// one.
const DefaultIngestLimit = 50

// maxPopularPages caps how many popular-listing pages are fetched while
// accumulating candidates.
const maxPopularPages = 3

// CatalogLister is the primary catalog: it seeds candidates and supplies the
// genre detail the listing omits.
type CatalogLister interface {
	GetPopularMovies(ctx context.Context, page int) ([]data_access.TMDBMovie, error)
	GetMovieDetails(ctx context.Context, tmdbID int) (*data_access.TMDBMovieDetail, error)
}

// RatingFetcher resolves an external numeric rating by title and year. A zero
// rating with nil error means "not found".
type RatingFetcher interface {
	GetIMDBRating(ctx context.Context, title string, year int) (float64, error)
}

// TrailerFetcher resolves trailer metadata by title. Nil with nil error means
// "not found".
type TrailerFetcher interface {
	GetTrailerInfo(ctx context.Context, movieTitle string) (*models.TrailerInfo, error)
}

// TraktFetcher resolves the Trakt bundle by title and year. Nil with nil
// error means "not found".
type TraktFetcher interface {
	GetTraktInfo(ctx context.Context, movieTitle string, year int) (*models.TraktInfo, error)
}

// IngestMovieStore is the slice of movie storage the pipeline writes through.
type IngestMovieStore interface {
	DeleteAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, movie *models.Movie) error
}

// IngestService produces a bounded batch of fully merged movie records from
// the primary catalog's popular listing, enriching each candidate from three
// auxiliary sources. A run replaces the whole movies collection: the catalog
// is an ephemeral snapshot, not an incrementally maintained store. Runs are
// strictly sequential per candidate to respect provider rate limits, and are
// not safe to invoke concurrently.
type IngestService struct {
	tmdb    CatalogLister
	omdb    RatingFetcher
	youtube TrailerFetcher
	trakt   TraktFetcher
	movies  IngestMovieStore

	// cooldown paces the auxiliary providers; one token per 200 ms in
	// production.
	cooldown *rate.Limiter
	logger   zerolog.Logger
}

func NewIngestService(
	tmdb CatalogLister,
	omdb RatingFetcher,
	youtube TrailerFetcher,
	trakt TraktFetcher,
	movies IngestMovieStore,
	cooldown *rate.Limiter,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		tmdb:     tmdb,
		omdb:     omdb,
		youtube:  youtube,
		trakt:    trakt,
		movies:   movies,
		cooldown: cooldown,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Run executes one ingestion batch. Candidate-listing or storage failures are
// fatal; everything after that is isolated per candidate, counted in the
// returned stats and logged.
func (s *IngestService) Run(ctx context.Context, limit int) (*models.IngestStats, error) {
	if limit <= 0 {
		limit = DefaultIngestLimit
	}

	candidates, err := s.collectCandidates(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing popular movies: %w", err)
	}

	// Full refresh: clear the previous snapshot before repopulating.
	deleted, err := s.movies.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("clearing movie collection: %w", err)
	}
	s.logger.Info().Int64("deleted", deleted).Int("candidates", len(candidates)).Msg("starting ingest run")

	stats := &models.IngestStats{Total: len(candidates)}

	for _, candidate := range candidates {
		if err := s.ingestOne(ctx, candidate, stats); err != nil {
			stats.Errors++
			s.logger.Error().Err(err).Str("title", candidate.Title).Msg("skipping movie")
		}
	}

	s.logger.Info().
		Int("total", stats.Total).
		Int("new", stats.New).
		Int("errors", stats.Errors).
		Msg("ingest run finished")

	return stats, nil
}

// collectCandidates pages through the popular listing until limit candidates
// are accumulated or the page cap is reached, then truncates to limit.
func (s *IngestService) collectCandidates(ctx context.Context, limit int) ([]data_access.TMDBMovie, error) {
	var all []data_access.TMDBMovie
	for page := 1; page <= maxPopularPages && len(all) < limit; page++ {
		movies, err := s.tmdb.GetPopularMovies(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(movies) == 0 {
			break
		}
		all = append(all, movies...)
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ingestOne runs the enrichment sequence for one candidate and persists the
// merged record. Any returned error aborts only this candidate.
func (s *IngestService) ingestOne(ctx context.Context, candidate data_access.TMDBMovie, stats *models.IngestStats) error {
	movie := candidate.ToMovie()

	details, err := s.tmdb.GetMovieDetails(ctx, candidate.ID)
	if err != nil {
		return fmt.Errorf("fetching details: %w", err)
	}
	if details != nil && len(details.Genres) > 0 {
		movie.Genre = joinGenreNames(details.Genres)
	}

	imdbRating, err := s.omdb.GetIMDBRating(ctx, candidate.Title, movie.Year)
	if err != nil {
		return fmt.Errorf("fetching IMDB rating: %w", err)
	}
	if imdbRating > 0 {
		movie.IMDBRating = imdbRating
		stats.WithIMDB++
	} else {
		stats.WithoutIMDB++
	}

	if err := s.cooldown.Wait(ctx); err != nil {
		return err
	}

	trailer, err := s.youtube.GetTrailerInfo(ctx, candidate.Title)
	if err != nil {
		return fmt.Errorf("fetching trailer info: %w", err)
	}
	if trailer != nil && trailer.VideoID != "" {
		movie.YouTubeVideoID = trailer.VideoID
		movie.YouTubeViews = trailer.ViewCount
		movie.YouTubeLikes = trailer.LikeCount
		movie.YouTubeTitle = trailer.Title
		movie.YouTubeChannel = trailer.ChannelTitle
		stats.WithYouTube++
	} else {
		stats.WithoutYouTube++
	}

	if err := s.cooldown.Wait(ctx); err != nil {
		return err
	}

	traktInfo, err := s.trakt.GetTraktInfo(ctx, candidate.Title, movie.Year)
	if err != nil {
		return fmt.Errorf("fetching Trakt info: %w", err)
	}
	if traktInfo != nil && traktInfo.TraktID != 0 {
		movie.TraktID = traktInfo.TraktID
		movie.TraktSlug = traktInfo.Slug
		movie.TraktRating = traktInfo.Rating
		movie.TraktVotes = traktInfo.Votes
		movie.TraktCertification = traktInfo.Certification
		movie.TraktTagline = traktInfo.Tagline
		movie.TraktOverview = traktInfo.Overview
		movie.TraktReleased = traktInfo.Released
		movie.TraktRuntime = traktInfo.Runtime
		movie.TraktGenres = traktInfo.Genres
		movie.TraktWatchers = traktInfo.Watchers
		movie.TraktPlays = traktInfo.Plays
		movie.TraktCollectors = traktInfo.Collectors
		stats.WithTrakt++
	} else {
		stats.WithoutTrakt++
	}

	if err := s.cooldown.Wait(ctx); err != nil {
		return err
	}

	if err := s.movies.Create(ctx, &movie); err != nil {
		return fmt.Errorf("persisting movie: %w", err)
	}
	stats.New++

	s.logger.Debug().Str("title", movie.Title).Int("year", movie.Year).Msg("movie ingested")
	return nil
}

func joinGenreNames(genres []data_access.TMDBGenre) string {
	out := ""
	for i, g := range genres {
		if i > 0 {
			out += ", "
		}
		out += g.Name
	}
	return out
}
