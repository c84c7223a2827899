package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/OffCrazyFreak/Pogled-app/middleware"
	"github.com/OffCrazyFreak/Pogled-app/models"
	"github.com/OffCrazyFreak/Pogled-app/services"
)

type MovieController struct {
	catalogService *services.CatalogService
}

func NewMovieController(catalogService *services.CatalogService) *MovieController {
	return &MovieController{catalogService: catalogService}
}

// ListMovies handles GET /api/movies with optional ?filter=genre|year|rating
// and ?value=.
func (c *MovieController) ListMovies(ctx *gin.Context) {
	filterType := ctx.Query("filter")
	filterValue := ctx.Query("value")

	movies, err := c.catalogService.ListMovies(ctx.Request.Context(), filterType, filterValue)
	if err != nil {
		log.Error().Err(err).Msg("listing movies failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch movies"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": movies})
}

func (c *MovieController) GetMovie(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	movie, err := c.catalogService.GetMovie(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
			return
		}
		log.Error().Err(err).Msg("fetching movie failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch movie"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": movie})
}

// DeleteMovies handles DELETE /api/movies?all=true.
func (c *MovieController) DeleteMovies(ctx *gin.Context) {
	if ctx.Query("all") != "true" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing all=true"})
		return
	}

	deleted, err := c.catalogService.DeleteAllMovies(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("deleting movies failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete movies"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("deleted %d movies", deleted)})
}

func (c *MovieController) DeleteMovie(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	if err := c.catalogService.DeleteMovie(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
			return
		}
		log.Error().Err(err).Msg("deleting movie failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete movie"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveMovie handles POST /api/movies/:id/save.
func (c *MovieController) SaveMovie(ctx *gin.Context) {
	userID, ok := authedUser(ctx)
	if !ok {
		return
	}
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	var req models.SaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingError(err)})
		return
	}

	if err := c.catalogService.SetSaved(ctx.Request.Context(), userID, id, req.Saved); err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
			return
		}
		log.Error().Err(err).Msg("saving movie failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save movie"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// RateMovie handles POST /api/movies/:id/rating.
func (c *MovieController) RateMovie(ctx *gin.Context) {
	userID, ok := authedUser(ctx)
	if !ok {
		return
	}
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	var req models.RateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingError(err)})
		return
	}

	if err := c.catalogService.SetRating(ctx.Request.Context(), userID, id, req.Rating); err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
			return
		}
		log.Error().Err(err).Msg("rating movie failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to rate movie"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *MovieController) SavedMovies(ctx *gin.Context) {
	userID, ok := authedUser(ctx)
	if !ok {
		return
	}

	movies, err := c.catalogService.SavedMovies(ctx.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("listing saved movies failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch saved movies"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": movies})
}

func (c *MovieController) RatedMovies(ctx *gin.Context) {
	userID, ok := authedUser(ctx)
	if !ok {
		return
	}

	movies, err := c.catalogService.RatedMovies(ctx.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("listing rated movies failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch rated movies"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": movies})
}

func movieID(ctx *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid movie id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func authedUser(ctx *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
