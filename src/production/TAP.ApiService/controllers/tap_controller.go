package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
	interfaces "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Interfaces"
)

// TapController handles the tap registry. New taps are picked up by the
// device link's topic table on the next restart.
type TapController struct {
	tapRepo interfaces.TapRepository
	logger  *logger.Logger
}

// NewTapController creates a new tap controller
func NewTapController(tapRepo interfaces.TapRepository, logger *logger.Logger) *TapController {
	return &TapController{
		tapRepo: tapRepo,
		logger:  logger,
	}
}

// RegisterRoutes registers the tap routes with Gin
func (c *TapController) RegisterRoutes(router *gin.Engine) {
	taps := router.Group("/taps")
	{
		taps.POST("", c.CreateTap)
		taps.GET("", c.ListTaps)
		taps.GET("/:tap_id", c.GetTap)
	}
}

type createTapRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Topic string `json:"topic" binding:"required"`
}

func (c *TapController) CreateTap(ctx *gin.Context) {
	var req createTapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tap := &tapmodels.Tap{
		Name:  req.Name,
		Type:  req.Type,
		Topic: req.Topic,
	}
	if err := c.tapRepo.CreateTap(ctx, tap); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, tap)
}

func (c *TapController) ListTaps(ctx *gin.Context) {
	taps, err := c.tapRepo.ListTaps(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": taps})
}

func (c *TapController) GetTap(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")

	tap, err := c.tapRepo.GetTap(ctx, tapID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tap == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "tap not found"})
		return
	}

	ctx.JSON(http.StatusOK, tap)
}
