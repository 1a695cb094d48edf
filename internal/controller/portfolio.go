package controller

import (
	"net/http"
	"strconv"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type PortfolioRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// ListPortfolios godoc
// @Summary List the user's portfolios
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Portfolio
// @Failure 401 {object} APIError
// @Router /api/v1/portfolios [get]
func (c *Controller) ListPortfolios(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	portfolios, err := c.repo.GetPortfoliosByUser(userID)
	if err != nil {
		internalError(ctx, "Failed to list portfolios")
		return
	}

	ctx.JSON(http.StatusOK, portfolios)
}

// CreatePortfolio godoc
// @Summary Create a portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PortfolioRequest true "Portfolio details"
// @Success 201 {object} models.Portfolio
// @Failure 400 {object} APIError
// @Router /api/v1/portfolios [post]
func (c *Controller) CreatePortfolio(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req PortfolioRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid portfolio request", err.Error())
		return
	}

	portfolio := &models.Portfolio{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := c.repo.CreatePortfolio(portfolio); err != nil {
		internalError(ctx, "Failed to create portfolio")
		return
	}

	ctx.JSON(http.StatusCreated, portfolio)
}

// GetPortfolio godoc
// @Summary Get one portfolio with its holdings
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {object} models.Portfolio
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id} [get]
func (c *Controller) GetPortfolio(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	portfolio, err := c.repo.GetUserPortfolioWithHoldings(userID, portfolioID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Portfolio not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to load portfolio")
		return
	}

	ctx.JSON(http.StatusOK, portfolio)
}

// UpdatePortfolio godoc
// @Summary Update a portfolio's name or description
// @Tags portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Param request body PortfolioRequest true "Portfolio details"
// @Success 200 {object} models.Portfolio
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id} [put]
func (c *Controller) UpdatePortfolio(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req PortfolioRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid portfolio request", err.Error())
		return
	}

	portfolio, err := c.repo.GetUserPortfolio(userID, portfolioID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Portfolio not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to load portfolio")
		return
	}

	portfolio.Name = req.Name
	portfolio.Description = req.Description
	if err := c.repo.UpdatePortfolio(portfolio); err != nil {
		internalError(ctx, "Failed to update portfolio")
		return
	}

	ctx.JSON(http.StatusOK, portfolio)
}

// DeletePortfolio godoc
// @Summary Delete a portfolio and its holdings
// @Tags portfolios
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 204
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id} [delete]
func (c *Controller) DeletePortfolio(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	err := c.repo.DeletePortfolio(userID, portfolioID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Portfolio not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to delete portfolio")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// PortfolioMetrics godoc
// @Summary Get valuation metrics for a portfolio
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {object} service.PortfolioMetrics
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id}/metrics [get]
func (c *Controller) PortfolioMetrics(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	metrics, err := c.analytics.PortfolioMetrics(ctx.Request.Context(), userID, portfolioID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Portfolio not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to compute metrics")
		return
	}

	ctx.JSON(http.StatusOK, metrics)
}
