package controller

import (
	"aptitude_backend/internal/util"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger probes the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	DB Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{DB: db}
}

// Welcome answers the root path.
func (c *HealthController) Welcome(ctx *gin.Context) {
	ctx.String(http.StatusOK, "Welcome to aptitude platform")
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} util.ErrorResponse
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.DB.Ping(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable", "database: down")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
	})
}
