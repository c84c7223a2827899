package models

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type IngestRequest struct {
	Limit int `json:"limit" binding:"omitempty,gt=0"`
}

type SaveRequest struct {
	Saved bool `json:"saved"`
}

type RateRequest struct {
	Rating int `json:"rating" binding:"min=0,max=10"`
}
