package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OffCrazyFreak/Pogled-app/models"
	"github.com/OffCrazyFreak/Pogled-app/services"
)

type IngestController struct {
	ingestService *services.IngestService
}

func NewIngestController(ingestService *services.IngestService) *IngestController {
	return &IngestController{ingestService: ingestService}
}

// TriggerIngest handles POST /api/ingest. The run is synchronous: the batch
// is a manually triggered job, and the response carries its statistics.
func (c *IngestController) TriggerIngest(ctx *gin.Context) {
	// An empty body means "use the default limit".
	var req models.IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingError(err)})
		return
	}

	stats, err := c.ingestService.Run(ctx.Request.Context(), req.Limit)
	if err != nil {
		log.Error().Err(err).Msg("ingest run failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "ingest run failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Movies fetched successfully",
		"stats":   stats,
	})
}
