package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// Sub-score caps. The composite score is the sum of independently capped
// components and ranges 0-105; it is intentionally not normalized.
const (
	maxSimilarUserScore    = 30.0
	maxUserRatingScore     = 25.0
	maxExternalRatingScore = 30.0
	maxGenreScore          = 10.0
	maxYearScore           = 5.0
	maxSavedBonus          = 5.0
)

const recommendationCacheTTL = 10 * time.Minute

// Empty-result statuses. These are successful outcomes, not errors.
const (
	MsgNoInteractions = "User has no interactions yet"
	MsgNoSimilarUsers = "No similar users found"
	MsgNoNewMovies    = "No new movies from similar users"
)

// RecommendMovieStore is the slice of movie storage the scorer reads.
type RecommendMovieStore interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error)
}

// InteractionStore is the interaction query contract the scorer depends on.
type InteractionStore interface {
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error)
	DistinctUsers(ctx context.Context, movieIDs []primitive.ObjectID, excludeUserID primitive.ObjectID) ([]primitive.ObjectID, error)
	FindActiveByUsersExcludingMovies(ctx context.Context, userIDs, excludeMovieIDs []primitive.ObjectID) ([]models.Interaction, error)
	FindByMovies(ctx context.Context, movieIDs []primitive.ObjectID) ([]models.Interaction, error)
}

// ResponseCache caches serialized recommendation results per user. Get
// returns ("", nil) on a miss.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RecommendationResult is the outcome of one scoring run. Message is set only
// for the empty cases.
type RecommendationResult struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Message         string                  `json:"message,omitempty"`
}

// RecommendService ranks movies a user has not interacted with, favoring
// movies liked by users with overlapping taste. It is read-only and safe
// under arbitrary concurrency.
type RecommendService struct {
	movies       RecommendMovieStore
	interactions InteractionStore
	cache        ResponseCache
	logger       zerolog.Logger
}

func NewRecommendService(
	movies RecommendMovieStore,
	interactions InteractionStore,
	cache ResponseCache,
	logger zerolog.Logger,
) *RecommendService {
	return &RecommendService{
		movies:       movies,
		interactions: interactions,
		cache:        cache,
		logger:       logger.With().Str("component", "recommend").Logger(),
	}
}

func recommendationCacheKey(userID primitive.ObjectID) string {
	return "recommendations:" + userID.Hex()
}

// InvalidateCache drops the user's cached recommendations. Called after every
// interaction write so a freshly saved or rated movie can never resurface
// from a stale cache.
func (s *RecommendService) InvalidateCache(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, recommendationCacheKey(userID)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.Hex()).Msg("failed to invalidate recommendation cache")
	}
}

// GetRecommendations computes the ranked recommendation list for one user.
func (s *RecommendService) GetRecommendations(ctx context.Context, userID primitive.ObjectID) (*RecommendationResult, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, recommendationCacheKey(userID)); err == nil && cached != "" {
			var result RecommendationResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				s.logger.Debug().Str("user_id", userID.Hex()).Msg("recommendations cache hit")
				return &result, nil
			}
		}
	}

	result, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, recommendationCacheKey(userID), string(data), recommendationCacheTTL); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache recommendations")
			}
		}
	}

	return result, nil
}

func (s *RecommendService) compute(ctx context.Context, userID primitive.ObjectID) (*RecommendationResult, error) {
	// The requester's active interactions and the taste signals they carry.
	userInteractions, err := s.interactions.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user interactions: %w", err)
	}
	if len(userInteractions) == 0 {
		return &RecommendationResult{Recommendations: []models.Recommendation{}, Message: MsgNoInteractions}, nil
	}

	userMovieIDs := make([]primitive.ObjectID, 0, len(userInteractions))
	for _, interaction := range userInteractions {
		userMovieIDs = append(userMovieIDs, interaction.MovieID)
	}

	userMovies, err := s.movies.FindByIDs(ctx, userMovieIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching user movies: %w", err)
	}

	// Genre tokens and release years are sets: a year shared by several of
	// the requester's movies counts once toward the mean.
	userGenres := make(map[string]bool)
	userYears := make(map[int]bool)
	for _, movie := range userMovies {
		for _, genre := range splitGenres(movie.Genre) {
			userGenres[genre] = true
		}
		if movie.Year > 0 {
			userYears[movie.Year] = true
		}
	}
	var yearSum, yearCount int
	for year := range userYears {
		yearSum += year
		yearCount++
	}

	// Similar users: anyone sharing at least one movie with the requester.
	similarUsers, err := s.interactions.DistinctUsers(ctx, userMovieIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("finding similar users: %w", err)
	}
	if len(similarUsers) == 0 {
		return &RecommendationResult{Recommendations: []models.Recommendation{}, Message: MsgNoSimilarUsers}, nil
	}

	// Candidate pool: similar users' active interactions on movies the
	// requester has not touched.
	candidateInteractions, err := s.interactions.FindActiveByUsersExcludingMovies(ctx, similarUsers, userMovieIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate interactions: %w", err)
	}
	if len(candidateInteractions) == 0 {
		return &RecommendationResult{Recommendations: []models.Recommendation{}, Message: MsgNoNewMovies}, nil
	}

	type candidateAgg struct {
		fromSimilarUsers int
		ratingSum        int
		ratingCount      int
		savedCount       int
	}
	candidates := make(map[primitive.ObjectID]*candidateAgg)
	for _, interaction := range candidateInteractions {
		agg := candidates[interaction.MovieID]
		if agg == nil {
			agg = &candidateAgg{}
			candidates[interaction.MovieID] = agg
		}
		agg.fromSimilarUsers++
		if interaction.Rating > 0 {
			agg.ratingSum += interaction.Rating
			agg.ratingCount++
		}
		if interaction.Saved {
			agg.savedCount++
		}
	}

	candidateIDs := make([]primitive.ObjectID, 0, len(candidates))
	for id := range candidates {
		candidateIDs = append(candidateIDs, id)
	}

	candidateMovies, err := s.movies.FindByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate movies: %w", err)
	}

	// Catalog-wide stats per candidate, across all users. Display metadata
	// only; not part of the score.
	type movieStat struct {
		saveCount   int
		ratingSum   int
		ratingCount int
	}
	allInteractions, err := s.interactions.FindByMovies(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching movie stats: %w", err)
	}
	stats := make(map[primitive.ObjectID]*movieStat)
	for _, interaction := range allInteractions {
		st := stats[interaction.MovieID]
		if st == nil {
			st = &movieStat{}
			stats[interaction.MovieID] = st
		}
		if interaction.Saved {
			st.saveCount++
		}
		if interaction.Rating > 0 {
			st.ratingSum += interaction.Rating
			st.ratingCount++
		}
	}

	recommendations := make([]models.Recommendation, 0, len(candidateMovies))
	for _, movie := range candidateMovies {
		agg := candidates[movie.ID]
		if agg == nil {
			continue
		}

		breakdown, reasons := scoreMovie(movie, agg.fromSimilarUsers, agg.ratingSum, agg.ratingCount, agg.savedCount, userGenres, yearSum, yearCount)
		total := breakdown.SimilarUserScore +
			breakdown.UserRatingScore +
			breakdown.ExternalRatingScore +
			breakdown.GenreScore +
			breakdown.YearScore +
			breakdown.SavedBonus

		rec := models.Recommendation{
			Movie:               movie,
			RecommendationScore: total,
			ScoreBreakdown:      breakdown,
			Reasons:             reasons,
		}
		if st := stats[movie.ID]; st != nil {
			rec.SaveCount = st.saveCount
			if st.ratingCount > 0 {
				rec.AppRating = float64(st.ratingSum) / float64(st.ratingCount)
			}
		}
		recommendations = append(recommendations, rec)
	}

	// Highest score first; ties broken by movie id so the order is stable
	// across runs.
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].RecommendationScore != recommendations[j].RecommendationScore {
			return recommendations[i].RecommendationScore > recommendations[j].RecommendationScore
		}
		return recommendations[i].Movie.ID.Hex() < recommendations[j].Movie.ID.Hex()
	})

	return &RecommendationResult{Recommendations: recommendations}, nil
}

// scoreMovie computes the capped sub-scores for one candidate.
func scoreMovie(
	movie models.Movie,
	fromSimilarUsers, ratingSum, ratingCount, savedCount int,
	userGenres map[string]bool,
	yearSum, yearCount int,
) (models.ScoreBreakdown, models.RecommendationReasons) {
	var b models.ScoreBreakdown

	// Similar-user popularity, 3 points per interaction.
	b.SimilarUserScore = math.Min(float64(fromSimilarUsers)*3, maxSimilarUserScore)

	// Mean of similar users' ratings, scaled to 25.
	avgUserRating := 0.0
	if ratingCount > 0 {
		avgUserRating = float64(ratingSum) / float64(ratingCount)
	}
	b.UserRatingScore = (avgUserRating / 10) * maxUserRatingScore

	// Mean of the present external ratings, scaled to 30.
	var externalSum float64
	var externalCount int
	for _, rating := range []float64{movie.IMDBRating, movie.Rating, movie.TraktRating} {
		if rating > 0 {
			externalSum += rating
			externalCount++
		}
	}
	avgExternal := 0.0
	if externalCount > 0 {
		avgExternal = externalSum / float64(externalCount)
		b.ExternalRatingScore = (avgExternal / 10) * maxExternalRatingScore
	}

	// Share of the movie's genre tokens the requester has interacted with.
	if tokens := splitGenres(movie.Genre); len(tokens) > 0 {
		matching := 0
		for _, token := range tokens {
			if userGenres[token] {
				matching++
			}
		}
		b.GenreScore = float64(matching) / float64(len(tokens)) * maxGenreScore
	}

	// Proximity to the requester's mean interacted year, low emphasis.
	if movie.Year > 0 && yearCount > 0 {
		avgYear := float64(yearSum) / float64(yearCount)
		b.YearScore = math.Max(0, maxYearScore-math.Abs(float64(movie.Year)-avgYear)/20)
	}

	b.SavedBonus = math.Min(float64(savedCount)*0.5, maxSavedBonus)

	reasons := models.RecommendationReasons{
		SimilarUsersCount: fromSimilarUsers,
		AvgUserRating:     fmt.Sprintf("%.1f", avgUserRating),
		AvgExternalRating: "N/A",
	}
	if externalCount > 0 {
		reasons.AvgExternalRating = fmt.Sprintf("%.1f", avgExternal)
	}

	return b, reasons
}

// splitGenres tokenizes a comma-joined genre string, trimming whitespace and
// dropping empty tokens.
func splitGenres(genre string) []string {
	if genre == "" {
		return nil
	}
	parts := strings.Split(genre, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
