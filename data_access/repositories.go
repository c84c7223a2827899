package data_access

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/OffCrazyFreak/Pogled-app/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

type MovieRepository struct {
	collection *mongo.Collection
}

type InteractionRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *MongoDB) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

func NewMovieRepository(db *MongoDB) *MovieRepository {
	return &MovieRepository{collection: db.Collection("movies")}
}

func NewInteractionRepository(db *MongoDB) *InteractionRepository {
	return &InteractionRepository{collection: db.Collection("interactions")}
}

// activeFilter matches interactions that count as active: saved, or rated
// above zero.
var activeFilter = bson.M{"$or": bson.A{
	bson.M{"saved": true},
	bson.M{"rating": bson.M{"$gt": 0}},
}}

// UserRepository methods

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	return err
}

// MovieRepository methods

func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	res, err := r.collection.InsertOne(ctx, movie)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		movie.ID = oid
	}
	return nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Movie, error) {
	var movie models.Movie
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movie)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *MovieRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Movie, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// FindFiltered lists movies matching an optional filter. Supported filters:
// genre (substring match on the comma-joined genre string), year (exact),
// rating (minimum IMDB rating).
func (r *MovieRepository) FindFiltered(ctx context.Context, filterType string, filterValue interface{}) ([]models.Movie, error) {
	filter := bson.M{}
	switch filterType {
	case "genre":
		filter["genre"] = bson.M{"$regex": filterValue, "$options": "i"}
	case "year":
		filter["year"] = filterValue
	case "rating":
		filter["imdb_rating"] = bson.M{"$gte": filterValue}
	}

	opts := options.Find().SetSort(bson.D{{Key: "fetched_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var movies []models.Movie
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *MovieRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MovieRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MovieRepository) find(ctx context.Context, filter bson.M) ([]models.Movie, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var movies []models.Movie
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// InteractionRepository methods

// Upsert sets the given fields on the (user, movie) interaction, creating the
// document if it does not exist yet.
func (r *InteractionRepository) Upsert(ctx context.Context, userID, movieID primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "movie_id": movieID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user_id": userID, "movie_id": movieID},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// FindActiveByUser returns the user's active interactions.
func (r *InteractionRepository) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error) {
	return r.find(ctx, bson.M{"user_id": userID, "$and": bson.A{activeFilter}})
}

// DistinctUsers returns the ids of every other user with an interaction on
// any of the given movies.
func (r *InteractionRepository) DistinctUsers(ctx context.Context, movieIDs []primitive.ObjectID, excludeUserID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := r.collection.Distinct(ctx, "user_id", bson.M{
		"movie_id": bson.M{"$in": movieIDs},
		"user_id":  bson.M{"$ne": excludeUserID},
	})
	if err != nil {
		return nil, err
	}
	users := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			users = append(users, oid)
		}
	}
	return users, nil
}

// FindActiveByUsersExcludingMovies returns active interactions from the given
// users on movies outside the excluded set.
func (r *InteractionRepository) FindActiveByUsersExcludingMovies(ctx context.Context, userIDs, excludeMovieIDs []primitive.ObjectID) ([]models.Interaction, error) {
	return r.find(ctx, bson.M{
		"user_id":  bson.M{"$in": userIDs},
		"movie_id": bson.M{"$nin": excludeMovieIDs},
		"$and":     bson.A{activeFilter},
	})
}

// FindByMovies returns every interaction on the given movies, from all users.
func (r *InteractionRepository) FindByMovies(ctx context.Context, movieIDs []primitive.ObjectID) ([]models.Interaction, error) {
	return r.find(ctx, bson.M{"movie_id": bson.M{"$in": movieIDs}})
}

func (r *InteractionRepository) find(ctx context.Context, filter bson.M) ([]models.Interaction, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var interactions []models.Interaction
	if err = cursor.All(ctx, &interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}
