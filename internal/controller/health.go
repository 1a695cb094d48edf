package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary Liveness and database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} APIError
// @Router /health [get]
func (c *Controller) Health(ctx *gin.Context) {
	if err := c.repo.Ping(); err != nil {
		serviceUnavailable(ctx, "Database unreachable")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
