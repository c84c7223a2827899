package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie source catalogs. The pair (source, sourceId) is unique across the
// movies collection.
const (
	SourceTMDB = "TMDB"
	SourceOMDB = "OMDB"
)

type Movie struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title  string             `bson:"title" json:"title"`
	Year   int                `bson:"year" json:"year"`
	Poster string             `bson:"poster,omitempty" json:"poster,omitempty"`
	Genre  string             `bson:"genre,omitempty" json:"genre,omitempty"`

	// Ratings, each independently optional.
	Rating     float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	IMDBRating float64 `bson:"imdb_rating,omitempty" json:"imdbRating,omitempty"`

	// YouTube trailer enrichment.
	YouTubeVideoID string `bson:"youtube_video_id,omitempty" json:"youtubeVideoId,omitempty"`
	YouTubeViews   int64  `bson:"youtube_views,omitempty" json:"youtubeViews,omitempty"`
	YouTubeLikes   int64  `bson:"youtube_likes,omitempty" json:"youtubeLikes,omitempty"`
	YouTubeTitle   string `bson:"youtube_title,omitempty" json:"youtubeTitle,omitempty"`
	YouTubeChannel string `bson:"youtube_channel,omitempty" json:"youtubeChannel,omitempty"`

	// Trakt.tv enrichment.
	TraktID            int      `bson:"trakt_id,omitempty" json:"traktId,omitempty"`
	TraktSlug          string   `bson:"trakt_slug,omitempty" json:"traktSlug,omitempty"`
	TraktRating        float64  `bson:"trakt_rating,omitempty" json:"traktRating,omitempty"`
	TraktVotes         int      `bson:"trakt_votes,omitempty" json:"traktVotes,omitempty"`
	TraktCertification string   `bson:"trakt_certification,omitempty" json:"traktCertification,omitempty"`
	TraktTagline       string   `bson:"trakt_tagline,omitempty" json:"traktTagline,omitempty"`
	TraktOverview      string   `bson:"trakt_overview,omitempty" json:"traktOverview,omitempty"`
	TraktReleased      string   `bson:"trakt_released,omitempty" json:"traktReleased,omitempty"`
	TraktRuntime       int      `bson:"trakt_runtime,omitempty" json:"traktRuntime,omitempty"`
	TraktGenres        []string `bson:"trakt_genres,omitempty" json:"traktGenres,omitempty"`
	TraktWatchers      int      `bson:"trakt_watchers,omitempty" json:"traktWatchers,omitempty"`
	TraktPlays         int      `bson:"trakt_plays,omitempty" json:"traktPlays,omitempty"`
	TraktCollectors    int      `bson:"trakt_collectors,omitempty" json:"traktCollectors,omitempty"`

	Source    string    `bson:"source" json:"source"`
	SourceID  string    `bson:"source_id" json:"sourceId"`
	FetchedAt time.Time `bson:"fetched_at" json:"fetchedAt"`
}
