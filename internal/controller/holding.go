package controller

import (
	"net/http"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type HoldingRequest struct {
	AssetSymbol  string  `json:"asset_symbol" binding:"required"`
	AssetType    string  `json:"asset_type" binding:"required,oneof=stock crypto etf mutual_fund bond cash"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	AveragePrice float64 `json:"average_price" binding:"required,gte=0"`
}

type HoldingUpdateRequest struct {
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	AveragePrice float64 `json:"average_price" binding:"required,gte=0"`
}

// ListHoldings godoc
// @Summary List the holdings in a portfolio
// @Tags holdings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {array} models.Holding
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id}/holdings [get]
func (c *Controller) ListHoldings(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if _, err := c.repo.GetUserPortfolio(userID, portfolioID); err != nil {
		notFound(ctx, "Portfolio not found")
		return
	}

	holdings, err := c.repo.GetHoldingsByPortfolio(portfolioID)
	if err != nil {
		internalError(ctx, "Failed to list holdings")
		return
	}

	ctx.JSON(http.StatusOK, holdings)
}

// CreateHolding godoc
// @Summary Add a manual holding to a portfolio
// @Tags holdings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Param request body HoldingRequest true "Holding details"
// @Success 201 {object} models.Holding
// @Failure 400 {object} APIError
// @Failure 409 {object} APIError
// @Router /api/v1/portfolios/{id}/holdings [post]
func (c *Controller) CreateHolding(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	portfolioID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req HoldingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid holding request", err.Error())
		return
	}

	if _, err := c.repo.GetUserPortfolio(userID, portfolioID); err != nil {
		notFound(ctx, "Portfolio not found")
		return
	}

	if _, err := c.repo.GetHoldingBySymbol(portfolioID, req.AssetSymbol); err == nil {
		conflict(ctx, "Holding already exists for this symbol")
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		internalError(ctx, "Failed to check existing holdings")
		return
	}

	holding := &models.Holding{
		PortfolioID:  portfolioID,
		AssetSymbol:  req.AssetSymbol,
		AssetType:    models.AssetType(req.AssetType),
		Quantity:     req.Quantity,
		AveragePrice: req.AveragePrice,
		Platform:     models.PlatformManual,
		LastUpdated:  time.Now().UTC(),
	}
	if err := c.repo.CreateHolding(holding); err != nil {
		internalError(ctx, "Failed to create holding")
		return
	}

	ctx.JSON(http.StatusCreated, holding)
}

// UpdateHolding godoc
// @Summary Update a holding's quantity or price
// @Tags holdings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Holding ID"
// @Param request body HoldingUpdateRequest true "New values"
// @Success 200 {object} models.Holding
// @Failure 404 {object} APIError
// @Router /api/v1/holdings/{id} [put]
func (c *Controller) UpdateHolding(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	holdingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req HoldingUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid holding request", err.Error())
		return
	}

	holding, err := c.repo.GetUserHolding(userID, holdingID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Holding not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to load holding")
		return
	}

	holding.Quantity = req.Quantity
	holding.AveragePrice = req.AveragePrice
	holding.LastUpdated = time.Now().UTC()
	if err := c.repo.UpdateHolding(holding); err != nil {
		internalError(ctx, "Failed to update holding")
		return
	}

	ctx.JSON(http.StatusOK, holding)
}

// DeleteHolding godoc
// @Summary Delete a holding
// @Tags holdings
// @Security BearerAuth
// @Param id path int true "Holding ID"
// @Success 204
// @Failure 404 {object} APIError
// @Router /api/v1/holdings/{id} [delete]
func (c *Controller) DeleteHolding(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	holdingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	holding, err := c.repo.GetUserHolding(userID, holdingID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Holding not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to load holding")
		return
	}

	if err := c.repo.DeleteHolding(holding.ID); err != nil {
		internalError(ctx, "Failed to delete holding")
		return
	}

	ctx.Status(http.StatusNoContent)
}
