package models

// TrailerInfo is the YouTube fragment merged into a movie record. A nil
// *TrailerInfo means no trailer was found, which is not an error.
type TrailerInfo struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	ViewCount    int64  `json:"viewCount"`
	LikeCount    int64  `json:"likeCount"`
}

// TraktInfo is the Trakt.tv fragment merged into a movie record. A nil
// *TraktInfo means the title was not found on Trakt.
type TraktInfo struct {
	TraktID       int      `json:"traktId"`
	Slug          string   `json:"traktSlug"`
	IMDBID        string   `json:"imdbId"`
	TMDBID        int      `json:"tmdbId"`
	Rating        float64  `json:"traktRating"`
	Votes         int      `json:"traktVotes"`
	Certification string   `json:"traktCertification"`
	Tagline       string   `json:"traktTagline"`
	Overview      string   `json:"traktOverview"`
	Released      string   `json:"traktReleased"`
	Runtime       int      `json:"traktRuntime"`
	Genres        []string `json:"traktGenres"`
	Watchers      int      `json:"traktWatchers"`
	Plays         int      `json:"traktPlays"`
	Collectors    int      `json:"traktCollectors"`
}
