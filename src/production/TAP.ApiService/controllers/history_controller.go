package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	interfaces "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Interfaces"
)

// HistoryController serves past sessions and their telemetry events
type HistoryController struct {
	sessionRepo interfaces.SessionRepository
	logger      *logger.Logger
}

// NewHistoryController creates a new history controller
func NewHistoryController(sessionRepo interfaces.SessionRepository, logger *logger.Logger) *HistoryController {
	return &HistoryController{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers the history routes with Gin
func (c *HistoryController) RegisterRoutes(router *gin.Engine) {
	router.GET("/users/:user_id/sessions", c.GetUserSessions)
	router.GET("/sessions/:session_id", c.GetSession)
	router.GET("/sessions/:session_id/events", c.GetSessionEvents)
}

func (c *HistoryController) GetUserSessions(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	sessions, err := c.sessionRepo.ListSessionsByUser(ctx, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": sessions})
}

func (c *HistoryController) GetSession(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	session, err := c.sessionRepo.FindSession(ctx, sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	ctx.JSON(http.StatusOK, session)
}

func (c *HistoryController) GetSessionEvents(ctx *gin.Context) {
	sessionID := ctx.Param("session_id")

	events, err := c.sessionRepo.ListEventsBySession(ctx, sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": events})
}
