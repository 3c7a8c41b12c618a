package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	coordinator "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Coordinator"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	interfaces "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Interfaces"
)

// QueueController exposes the tap wait queues to the presentation
// layer. Queue operations never fail for a missing tap or user: those
// are no-ops or empty results, not errors.
type QueueController struct {
	coord    *coordinator.Coordinator
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

// NewQueueController creates a new queue controller
func NewQueueController(coord *coordinator.Coordinator, userRepo interfaces.UserRepository, logger *logger.Logger) *QueueController {
	return &QueueController{
		coord:    coord,
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterRoutes registers the queue routes with Gin
func (c *QueueController) RegisterRoutes(router *gin.Engine) {
	taps := router.Group("/taps")
	{
		taps.POST("/:tap_id/queue", c.Enqueue)
		taps.GET("/:tap_id/queue", c.GetSnapshot)
		taps.DELETE("/:tap_id/queue/:user_id", c.Cancel)
		taps.GET("/:tap_id/queue/:user_id/position", c.GetPosition)
		taps.GET("/:tap_id/queue/:user_id/next", c.IsNext)
	}
	router.POST("/users/:user_id/signout", c.SignOut)
}

type enqueueRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (c *QueueController) Enqueue(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")

	var req enqueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	user, err := c.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// re-joining a queue the user is already in costs nothing
	if c.coord.GetUserPosition(tapID, req.UserID) < 0 {
		ok, err := c.userRepo.DeductCredit(ctx, req.UserID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "no credits left"})
			return
		}
	}

	c.coord.EnqueueUser(tapID, user.UserID, user.Username)

	ctx.JSON(http.StatusOK, gin.H{
		"tap_id":   tapID,
		"position": c.coord.GetUserPosition(tapID, user.UserID),
	})
}

func (c *QueueController) GetSnapshot(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")
	ctx.JSON(http.StatusOK, gin.H{
		"tap_id": tapID,
		"queue":  c.coord.GetQueueSnapshot(tapID),
	})
}

func (c *QueueController) Cancel(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")
	userID := ctx.Param("user_id")

	if err := c.coord.CancelUser(ctx, tapID, userID); err != nil {
		c.logger.WithTap(tapID).ErrorWithError(err, "cancel failed to close session")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tap_id": tapID, "user_id": userID})
}

func (c *QueueController) GetPosition(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")
	userID := ctx.Param("user_id")

	ctx.JSON(http.StatusOK, gin.H{
		"tap_id":   tapID,
		"user_id":  userID,
		"position": c.coord.GetUserPosition(tapID, userID),
	})
}

func (c *QueueController) IsNext(ctx *gin.Context) {
	tapID := ctx.Param("tap_id")
	userID := ctx.Param("user_id")

	ctx.JSON(http.StatusOK, gin.H{
		"tap_id":  tapID,
		"user_id": userID,
		"next":    c.coord.IsUserNext(tapID, userID),
	})
}

func (c *QueueController) SignOut(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	if err := c.coord.RemoveUserFromAllTaps(ctx, userID); err != nil {
		c.logger.WithField("user_id", userID).ErrorWithError(err, "sign-out sweep failed to close session")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user_id": userID})
}
