package models

// IngestStats summarizes one run of the ingestion pipeline.
type IngestStats struct {
	Total          int `json:"total"`
	New            int `json:"new"`
	Existing       int `json:"existing"`
	WithIMDB       int `json:"withIMDB"`
	WithoutIMDB    int `json:"withoutIMDB"`
	WithYouTube    int `json:"withYouTube"`
	WithoutYouTube int `json:"withoutYouTube"`
	WithTrakt      int `json:"withTrakt"`
	WithoutTrakt   int `json:"withoutTrakt"`
	Errors         int `json:"errors"`
}
