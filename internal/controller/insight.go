package controller

import (
	"net/http"

	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type InsightResponse struct {
	PortfolioID int64  `json:"portfolio_id"`
	Insight     string `json:"insight"`
}

// PortfolioInsights godoc
// @Summary Get AI commentary on a portfolio
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {object} InsightResponse
// @Failure 404 {object} APIError
// @Failure 503 {object} APIError
// @Router /api/v1/portfolios/{id}/insights [get]
func (c *Controller) PortfolioInsights(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	insight, err := c.insights.PortfolioInsights(ctx.Request.Context(), userID, portfolioID)
	if err != nil {
		c.insightError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, InsightResponse{PortfolioID: portfolioID, Insight: insight})
}

// TransactionAnalysis godoc
// @Summary Get AI commentary on a portfolio's trading activity
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {object} InsightResponse
// @Failure 404 {object} APIError
// @Failure 503 {object} APIError
// @Router /api/v1/portfolios/{id}/transaction-analysis [get]
func (c *Controller) TransactionAnalysis(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	insight, err := c.insights.TransactionAnalysis(ctx.Request.Context(), userID, portfolioID)
	if err != nil {
		c.insightError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, InsightResponse{PortfolioID: portfolioID, Insight: insight})
}

func (c *Controller) insightError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInsightsUnavailable):
		serviceUnavailable(ctx, "Insights are not configured")
	case errors.Is(err, repo.ErrNotFound):
		notFound(ctx, "Portfolio not found")
	default:
		c.logger.Warn("insight request failed", "error", err)
		internalError(ctx, "Failed to generate insight")
	}
}
