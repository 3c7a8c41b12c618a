package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LinkStatus reports the device link's connectivity
type LinkStatus interface {
	IsConnected() bool
}

// HealthController reports service health: the database must answer a
// ping and the device link must hold its broker connection.
type HealthController struct {
	db   *sql.DB
	link LinkStatus
}

// NewHealthController creates a new health controller
func NewHealthController(db *sql.DB, link LinkStatus) *HealthController {
	return &HealthController{db: db, link: link}
}

// RegisterRoutes registers the health route with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.GetHealth)
}

func (c *HealthController) GetHealth(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dbStatus := "connected"
	if err := c.db.PingContext(checkCtx); err != nil {
		dbStatus = "disconnected"
	}

	mqttStatus := "connected"
	if !c.link.IsConnected() {
		mqttStatus = "disconnected"
	}

	status := "healthy"
	code := http.StatusOK
	if dbStatus != "connected" || mqttStatus != "connected" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database": dbStatus,
			"mqtt":     mqttStatus,
		},
	})
}
