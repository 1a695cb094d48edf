package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SyncPortfolios godoc
// @Summary Pull holdings from all connected platforms
// @Description Runs one sync pass. Always returns 200; per-platform
// @Description failures are reported in the body instead of failing the call.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SyncReport
// @Failure 401 {object} APIError
// @Router /api/v1/sync [post]
func (c *Controller) SyncPortfolios(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	report := c.sync.Sync(ctx.Request.Context(), userID)
	ctx.JSON(http.StatusOK, report)
}
