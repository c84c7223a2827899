package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interaction is one user's saved/rating relationship to one movie. There is
// at most one document per (user, movie) pair; writes upsert.
type Interaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	MovieID   primitive.ObjectID `bson:"movie_id" json:"movieId"`
	Saved     bool               `bson:"saved" json:"saved"`
	Rating    int                `bson:"rating" json:"rating"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Active reports whether the interaction counts for membership and
// recommendation queries. An interaction that is neither saved nor rated is
// logically absent.
func (i Interaction) Active() bool {
	return i.Saved || i.Rating > 0
}
