package services

import (
	"context"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// CatalogMovieStore is the movie storage contract for browsing and deletion.
type CatalogMovieStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error)
	FindFiltered(ctx context.Context, filterType string, filterValue interface{}) ([]models.Movie, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// InteractionWriter is the interaction storage contract for personalization.
type InteractionWriter interface {
	Upsert(ctx context.Context, userID, movieID primitive.ObjectID, set bson.M) error
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error)
}

// RatedMovie pairs a movie with the requesting user's rating.
type RatedMovie struct {
	models.Movie
	UserRating int `json:"userRating"`
}

// CatalogService serves browsing, filtering, deletion and the per-user
// save/rate operations. Interactions live server-side so the recommendation
// scorer has a single source of truth.
type CatalogService struct {
	movies       CatalogMovieStore
	interactions InteractionWriter
	recommender  *RecommendService
	logger       zerolog.Logger
}

func NewCatalogService(
	movies CatalogMovieStore,
	interactions InteractionWriter,
	recommender *RecommendService,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		movies:       movies,
		interactions: interactions,
		recommender:  recommender,
		logger:       logger.With().Str("component", "catalog").Logger(),
	}
}

// ListMovies returns the catalog, optionally narrowed by one filter. Year and
// rating values arrive as query strings and are coerced here; an unparsable
// value yields an unfiltered listing rather than an error.
func (s *CatalogService) ListMovies(ctx context.Context, filterType, filterValue string) ([]models.Movie, error) {
	var value interface{} = filterValue
	switch filterType {
	case "year":
		year, err := strconv.Atoi(filterValue)
		if err != nil {
			filterType = ""
		}
		value = year
	case "rating":
		rating, err := strconv.ParseFloat(filterValue, 64)
		if err != nil {
			filterType = ""
		}
		value = rating
	case "genre":
		// The value feeds a $regex; quote it so "(" matches literally
		// instead of failing the query.
		value = regexp.QuoteMeta(filterValue)
	default:
		filterType = ""
	}

	movies, err := s.movies.FindFiltered(ctx, filterType, value)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

func (s *CatalogService) GetMovie(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	movie, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}
	return movie, nil
}

func (s *CatalogService) DeleteMovie(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.movies.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (s *CatalogService) DeleteAllMovies(ctx context.Context) (int64, error) {
	return s.movies.DeleteAll(ctx)
}

// SetSaved toggles the saved flag on the (user, movie) interaction.
func (s *CatalogService) SetSaved(ctx context.Context, userID, movieID primitive.ObjectID, saved bool) error {
	if _, err := s.GetMovie(ctx, movieID); err != nil {
		return err
	}
	if err := s.interactions.Upsert(ctx, userID, movieID, bson.M{"saved": saved}); err != nil {
		return err
	}
	s.recommender.InvalidateCache(ctx, userID)
	return nil
}

// SetRating assigns the user's rating for a movie. Rating 0 clears it.
func (s *CatalogService) SetRating(ctx context.Context, userID, movieID primitive.ObjectID, rating int) error {
	if _, err := s.GetMovie(ctx, movieID); err != nil {
		return err
	}
	if err := s.interactions.Upsert(ctx, userID, movieID, bson.M{"rating": rating}); err != nil {
		return err
	}
	s.recommender.InvalidateCache(ctx, userID)
	return nil
}

// SavedMovies returns the movies the user has saved. Interactions whose movie
// vanished in a catalog refresh drop out silently.
func (s *CatalogService) SavedMovies(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	interactions, err := s.interactions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(interactions))
	for _, interaction := range interactions {
		if interaction.Saved {
			ids = append(ids, interaction.MovieID)
		}
	}
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}

	movies, err := s.movies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

// RatedMovies returns the movies the user has rated above zero, each paired
// with that rating.
func (s *CatalogService) RatedMovies(ctx context.Context, userID primitive.ObjectID) ([]RatedMovie, error) {
	interactions, err := s.interactions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ratings := make(map[primitive.ObjectID]int)
	ids := make([]primitive.ObjectID, 0, len(interactions))
	for _, interaction := range interactions {
		if interaction.Rating > 0 {
			ratings[interaction.MovieID] = interaction.Rating
			ids = append(ids, interaction.MovieID)
		}
	}
	if len(ids) == 0 {
		return []RatedMovie{}, nil
	}

	movies, err := s.movies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rated := make([]RatedMovie, 0, len(movies))
	for _, movie := range movies {
		rated = append(rated, RatedMovie{Movie: movie, UserRating: ratings[movie.ID]})
	}
	return rated, nil
}
