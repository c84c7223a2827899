package models

// ScoreBreakdown exposes each capped sub-score that went into a
// recommendation, so the ranking stays explainable.
type ScoreBreakdown struct {
	SimilarUserScore    float64 `json:"similarUserScore"`
	UserRatingScore     float64 `json:"userRatingScore"`
	ExternalRatingScore float64 `json:"externalRatingScore"`
	GenreScore          float64 `json:"genreScore"`
	YearScore           float64 `json:"yearScore"`
	SavedBonus          float64 `json:"savedBonus"`
}

// RecommendationReasons is display metadata about why a movie was picked.
// AvgUserRating and AvgExternalRating are formatted to one decimal;
// AvgExternalRating is "N/A" when the record carries no external rating.
type RecommendationReasons struct {
	SimilarUsersCount int    `json:"similarUsersCount"`
	AvgUserRating     string `json:"avgUserRating"`
	AvgExternalRating string `json:"avgExternalRating"`
}

// Recommendation decorates a movie record with its computed score and the
// catalog-wide interaction stats shown in the UI.
type Recommendation struct {
	Movie

	SaveCount           int                   `json:"saveCount"`
	AppRating           float64               `json:"appRating"`
	RecommendationScore float64               `json:"recommendationScore"`
	ScoreBreakdown      ScoreBreakdown        `json:"scoreBreakdown"`
	Reasons             RecommendationReasons `json:"recommendationReasons"`
}
