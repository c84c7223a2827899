package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OffCrazyFreak/Pogled-app/services"
)

type RecommendController struct {
	recommendService *services.RecommendService
}

func NewRecommendController(recommendService *services.RecommendService) *RecommendController {
	return &RecommendController{recommendService: recommendService}
}

// GetRecommendations handles GET /api/recommendations. Empty results (no
// interactions, no similar users, no fresh candidates) are successes with a
// message; internal failures surface a generic error only.
func (c *RecommendController) GetRecommendations(ctx *gin.Context) {
	userID, ok := authedUser(ctx)
	if !ok {
		return
	}

	result, err := c.recommendService.GetRecommendations(ctx.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("generating recommendations failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to generate recommendations"})
		return
	}

	resp := gin.H{
		"success":              true,
		"recommendations":      result.Recommendations,
		"totalRecommendations": len(result.Recommendations),
	}
	if result.Message != "" {
		resp["message"] = result.Message
	}
	ctx.JSON(http.StatusOK, resp)
}
