package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

// ----- Fakes -----

type fakeMovieStore struct {
	movies map[primitive.ObjectID]models.Movie
}

func (f *fakeMovieStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	var out []models.Movie
	for _, id := range ids {
		if m, ok := f.movies[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeInteractionStore struct {
	interactions []models.Interaction

	// capture args
	excludedMovies []primitive.ObjectID
}

func (f *fakeInteractionStore) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, i := range f.interactions {
		if i.UserID == userID && i.Active() {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) DistinctUsers(ctx context.Context, movieIDs []primitive.ObjectID, excludeUserID primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool)
	var out []primitive.ObjectID
	for _, i := range f.interactions {
		if i.UserID == excludeUserID || seen[i.UserID] {
			continue
		}
		for _, id := range movieIDs {
			if i.MovieID == id {
				seen[i.UserID] = true
				out = append(out, i.UserID)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) FindActiveByUsersExcludingMovies(ctx context.Context, userIDs, excludeMovieIDs []primitive.ObjectID) ([]models.Interaction, error) {
	f.excludedMovies = excludeMovieIDs
	users := make(map[primitive.ObjectID]bool)
	for _, id := range userIDs {
		users[id] = true
	}
	excluded := make(map[primitive.ObjectID]bool)
	for _, id := range excludeMovieIDs {
		excluded[id] = true
	}
	var out []models.Interaction
	for _, i := range f.interactions {
		if users[i.UserID] && !excluded[i.MovieID] && i.Active() {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) FindByMovies(ctx context.Context, movieIDs []primitive.ObjectID) ([]models.Interaction, error) {
	wanted := make(map[primitive.ObjectID]bool)
	for _, id := range movieIDs {
		wanted[id] = true
	}
	var out []models.Interaction
	for _, i := range f.interactions {
		if wanted[i.MovieID] {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeCache struct {
	entries map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return f.entries[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.entries, key)
	return nil
}

// ----- Helpers -----

func oid(suffix byte) primitive.ObjectID {
	var id primitive.ObjectID
	id[11] = suffix
	return id
}

func newRecommendService(movies *fakeMovieStore, interactions *fakeInteractionStore, cache ResponseCache) *RecommendService {
	return NewRecommendService(movies, interactions, cache, zerolog.Nop())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ----- Tests -----

func TestRecommendationsNoInteractions(t *testing.T) {
	svc := newRecommendService(
		&fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{}},
		&fakeInteractionStore{},
		nil,
	)

	result, err := svc.GetRecommendations(context.Background(), oid(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 0 {
		t.Fatalf("expected empty recommendations, got %d", len(result.Recommendations))
	}
	if result.Message != MsgNoInteractions {
		t.Errorf("expected message %q, got %q", MsgNoInteractions, result.Message)
	}
}

func TestRecommendationsNoSimilarUsers(t *testing.T) {
	user := oid(1)
	m1 := oid(10)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		m1: {ID: m1, Title: "Solo", Genre: "Drama", Year: 2010},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: m1, Saved: true},
	}}

	result, err := newRecommendService(movies, interactions, nil).GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 0 || result.Message != MsgNoSimilarUsers {
		t.Errorf("expected empty result with %q, got %d recs, message %q",
			MsgNoSimilarUsers, len(result.Recommendations), result.Message)
	}
}

func TestRecommendationsNoNewMovies(t *testing.T) {
	user, other := oid(1), oid(2)
	m1 := oid(10)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		m1: {ID: m1, Title: "Shared", Genre: "Drama", Year: 2010},
	}}
	// The other user only interacted with the same movie.
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: m1, Saved: true},
		{UserID: other, MovieID: m1, Rating: 8},
	}}

	result, err := newRecommendService(movies, interactions, nil).GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 0 || result.Message != MsgNoNewMovies {
		t.Errorf("expected empty result with %q, got %d recs, message %q",
			MsgNoNewMovies, len(result.Recommendations), result.Message)
	}
}

// The worked example: requester interacted with M1 (Drama, Action; 2010) and
// M2 (Drama; 2012); similar user saved M3 (Drama; external ratings averaging
// 8.0, no other savers).
func TestRecommendationsWorkedExample(t *testing.T) {
	user, other := oid(1), oid(2)
	m1, m2, m3 := oid(10), oid(11), oid(12)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		m1: {ID: m1, Title: "M1", Genre: "Drama, Action", Year: 2010},
		m2: {ID: m2, Title: "M2", Genre: "Drama", Year: 2012},
		m3: {ID: m3, Title: "M3", Genre: "Drama", Year: 2011, IMDBRating: 8.0},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: m1, Saved: true},
		{UserID: user, MovieID: m2, Rating: 7},
		{UserID: other, MovieID: m1, Saved: true},
		{UserID: other, MovieID: m3, Saved: true},
	}}

	result, err := newRecommendService(movies, interactions, nil).GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(result.Recommendations))
	}

	rec := result.Recommendations[0]
	if rec.Movie.ID != m3 {
		t.Fatalf("expected M3 to be recommended, got %s", rec.Movie.Title)
	}

	b := rec.ScoreBreakdown
	if !almostEqual(b.SimilarUserScore, 3) {
		t.Errorf("similar-user score = %v, want 3", b.SimilarUserScore)
	}
	if !almostEqual(b.ExternalRatingScore, 24) {
		t.Errorf("external-rating score = %v, want 24", b.ExternalRatingScore)
	}
	if !almostEqual(b.GenreScore, 10) {
		t.Errorf("genre score = %v, want 10", b.GenreScore)
	}
	// One saver, no ratings from similar users.
	if !almostEqual(b.SavedBonus, 0.5) {
		t.Errorf("saved bonus = %v, want 0.5", b.SavedBonus)
	}
	if !almostEqual(b.UserRatingScore, 0) {
		t.Errorf("user-rating score = %v, want 0", b.UserRatingScore)
	}
	// Year signal: mean of {2010, 2012} = 2011, M3 is from 2011.
	if !almostEqual(b.YearScore, 5) {
		t.Errorf("year score = %v, want 5", b.YearScore)
	}

	if rec.Reasons.SimilarUsersCount != 1 {
		t.Errorf("similarUsersCount = %d, want 1", rec.Reasons.SimilarUsersCount)
	}
	if rec.Reasons.AvgExternalRating != "8.0" {
		t.Errorf("avgExternalRating = %q, want \"8.0\"", rec.Reasons.AvgExternalRating)
	}
	if rec.Reasons.AvgUserRating != "0.0" {
		t.Errorf("avgUserRating = %q, want \"0.0\"", rec.Reasons.AvgUserRating)
	}
	if rec.SaveCount != 1 {
		t.Errorf("saveCount = %d, want 1", rec.SaveCount)
	}
}

// Sub-scores must never exceed their caps regardless of input volume.
func TestRecommendationScoreCaps(t *testing.T) {
	user := oid(1)
	shared := oid(10)
	candidate := oid(11)

	movies := map[primitive.ObjectID]models.Movie{
		shared:    {ID: shared, Title: "Shared", Genre: "Drama", Year: 2000},
		candidate: {ID: candidate, Title: "Candidate", Genre: "Drama", Year: 2000, IMDBRating: 10, Rating: 10, TraktRating: 10},
	}
	interactions := []models.Interaction{
		{UserID: user, MovieID: shared, Saved: true},
	}
	// Twenty similar users, all saving and top-rating the candidate.
	for i := byte(0); i < 20; i++ {
		similar := oid(100 + i)
		interactions = append(interactions,
			models.Interaction{UserID: similar, MovieID: shared, Saved: true},
			models.Interaction{UserID: similar, MovieID: candidate, Saved: true, Rating: 10},
		)
	}

	svc := newRecommendService(&fakeMovieStore{movies: movies}, &fakeInteractionStore{interactions: interactions}, nil)
	result, err := svc.GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(result.Recommendations))
	}

	b := result.Recommendations[0].ScoreBreakdown
	checks := []struct {
		name  string
		value float64
		cap   float64
	}{
		{"similarUserScore", b.SimilarUserScore, maxSimilarUserScore},
		{"userRatingScore", b.UserRatingScore, maxUserRatingScore},
		{"externalRatingScore", b.ExternalRatingScore, maxExternalRatingScore},
		{"genreScore", b.GenreScore, maxGenreScore},
		{"yearScore", b.YearScore, maxYearScore},
		{"savedBonus", b.SavedBonus, maxSavedBonus},
	}
	for _, c := range checks {
		if c.value > c.cap {
			t.Errorf("%s = %v exceeds cap %v", c.name, c.value, c.cap)
		}
	}
	// All maxed out: 30 + 25 + 30 + 10 + 5 + 5.
	if total := result.Recommendations[0].RecommendationScore; !almostEqual(total, 105) {
		t.Errorf("total score = %v, want 105", total)
	}
}

func TestRecommendationsExcludeInteractedMovies(t *testing.T) {
	user, other := oid(1), oid(2)
	m1, m2 := oid(10), oid(11)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		m1: {ID: m1, Title: "Seen", Genre: "Drama", Year: 2010},
		m2: {ID: m2, Title: "Fresh", Genre: "Drama", Year: 2011},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: m1, Saved: true},
		{UserID: other, MovieID: m1, Saved: true},
		{UserID: other, MovieID: m2, Saved: true},
	}}

	result, err := newRecommendService(movies, interactions, nil).GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range result.Recommendations {
		if rec.Movie.ID == m1 {
			t.Fatal("recommendation list contains a movie the requester already interacted with")
		}
	}
	if len(interactions.excludedMovies) != 1 || interactions.excludedMovies[0] != m1 {
		t.Errorf("candidate query excluded %v, want [%v]", interactions.excludedMovies, m1)
	}
}

func TestGenreOverlapBounds(t *testing.T) {
	user, other := oid(1), oid(2)
	shared, fullMatch, noMatch := oid(10), oid(11), oid(12)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		shared:    {ID: shared, Title: "Shared", Genre: "Drama, Action", Year: 2010},
		fullMatch: {ID: fullMatch, Title: "Full", Genre: "Action, Drama", Year: 2010},
		noMatch:   {ID: noMatch, Title: "None", Genre: "Comedy, Horror", Year: 2010},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: shared, Saved: true},
		{UserID: other, MovieID: shared, Saved: true},
		{UserID: other, MovieID: fullMatch, Saved: true},
		{UserID: other, MovieID: noMatch, Saved: true},
	}}

	result, err := newRecommendService(movies, interactions, nil).GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(result.Recommendations))
	}
	for _, rec := range result.Recommendations {
		switch rec.Movie.ID {
		case fullMatch:
			if !almostEqual(rec.ScoreBreakdown.GenreScore, 10) {
				t.Errorf("full-overlap genre score = %v, want 10", rec.ScoreBreakdown.GenreScore)
			}
		case noMatch:
			if !almostEqual(rec.ScoreBreakdown.GenreScore, 0) {
				t.Errorf("zero-overlap genre score = %v, want 0", rec.ScoreBreakdown.GenreScore)
			}
		}
	}
}

// Equal scores order by ascending movie id so repeated runs agree.
func TestRecommendationTieBreak(t *testing.T) {
	user, other := oid(1), oid(2)
	shared, candA, candB := oid(10), oid(20), oid(21)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		shared: {ID: shared, Title: "Shared", Genre: "Drama", Year: 2010},
		candA:  {ID: candA, Title: "A", Genre: "Drama", Year: 2010},
		candB:  {ID: candB, Title: "B", Genre: "Drama", Year: 2010},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: shared, Saved: true},
		{UserID: other, MovieID: shared, Saved: true},
		{UserID: other, MovieID: candB, Saved: true},
		{UserID: other, MovieID: candA, Saved: true},
	}}

	svc := newRecommendService(movies, interactions, nil)
	for run := 0; run < 3; run++ {
		result, err := svc.GetRecommendations(context.Background(), user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Recommendations) != 2 {
			t.Fatalf("expected 2 recommendations, got %d", len(result.Recommendations))
		}
		first, second := result.Recommendations[0], result.Recommendations[1]
		if first.RecommendationScore != second.RecommendationScore {
			t.Fatalf("expected a tie, got %v vs %v", first.RecommendationScore, second.RecommendationScore)
		}
		if first.Movie.ID != candA || second.Movie.ID != candB {
			t.Errorf("run %d: tie ordered %v before %v, want ascending movie id", run, first.Movie.ID, second.Movie.ID)
		}
	}
}

func TestRecommendationsServedFromCache(t *testing.T) {
	user, other := oid(1), oid(2)
	shared, cand := oid(10), oid(11)

	movies := &fakeMovieStore{movies: map[primitive.ObjectID]models.Movie{
		shared: {ID: shared, Title: "Shared", Genre: "Drama", Year: 2010},
		cand:   {ID: cand, Title: "Candidate", Genre: "Drama", Year: 2010},
	}}
	interactions := &fakeInteractionStore{interactions: []models.Interaction{
		{UserID: user, MovieID: shared, Saved: true},
		{UserID: other, MovieID: shared, Saved: true},
		{UserID: other, MovieID: cand, Saved: true},
	}}
	cache := newFakeCache()
	svc := newRecommendService(movies, interactions, cache)

	first, err := svc.GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("expected one cache entry, got %d", len(cache.entries))
	}

	// Mutate the store; the cached response must win until invalidated.
	interactions.interactions = nil
	cached, err := svc.GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cached.Recommendations) != len(first.Recommendations) {
		t.Errorf("cached response differs: %d vs %d recommendations", len(cached.Recommendations), len(first.Recommendations))
	}

	svc.InvalidateCache(context.Background(), user)
	fresh, err := svc.GetRecommendations(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh.Message != MsgNoInteractions {
		t.Errorf("after invalidation expected recompute with %q, got %q", MsgNoInteractions, fresh.Message)
	}
}

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Drama", []string{"Drama"}},
		{"Drama, Action", []string{"Drama", "Action"}},
		{" Drama ,, Action ", []string{"Drama", "Action"}},
	}
	for _, tt := range tests {
		got := splitGenres(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitGenres(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitGenres(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
