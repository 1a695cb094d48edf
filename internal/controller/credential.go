package controller

import (
	"net/http"

	"github.com/Eddie1114/portfolio-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

type CredentialRequest struct {
	Platform  string `json:"platform" binding:"required,oneof=gemini fidelity"`
	APIKey    string `json:"api_key" binding:"required"`
	APISecret string `json:"api_secret" binding:"required"`
}

// ListCredentials godoc
// @Summary List connected platforms
// @Description Secrets are never returned, only which platforms are linked.
// @Tags platforms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PlatformCredential
// @Failure 401 {object} APIError
// @Router /api/v1/platforms/credentials [get]
func (c *Controller) ListCredentials(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	credentials, err := c.repo.GetCredentialsByUser(userID)
	if err != nil {
		internalError(ctx, "Failed to list credentials")
		return
	}

	ctx.JSON(http.StatusOK, credentials)
}

// UpsertCredential godoc
// @Summary Store or replace platform credentials
// @Tags platforms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CredentialRequest true "Platform credentials"
// @Success 200 {object} models.PlatformCredential
// @Failure 400 {object} APIError
// @Router /api/v1/platforms/credentials [put]
func (c *Controller) UpsertCredential(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CredentialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid credential request", err.Error())
		return
	}

	credential := &models.PlatformCredential{
		UserID:    userID,
		Platform:  models.Platform(req.Platform),
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
	}
	if err := c.repo.UpsertPlatformCredential(credential); err != nil {
		internalError(ctx, "Failed to store credentials")
		return
	}

	ctx.JSON(http.StatusOK, credential)
}
