package controller

import (
	"net/http"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type TransactionRequest struct {
	HoldingID       int64      `json:"holding_id" binding:"required"`
	TransactionType string     `json:"transaction_type" binding:"required,oneof=buy sell"`
	Quantity        float64    `json:"quantity" binding:"required,gt=0"`
	Price           float64    `json:"price" binding:"required,gte=0"`
	Timestamp       *time.Time `json:"timestamp"`
}

// ListTransactions godoc
// @Summary List transactions across a portfolio
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Portfolio ID"
// @Success 200 {array} models.Transaction
// @Failure 404 {object} APIError
// @Router /api/v1/portfolios/{id}/transactions [get]
func (c *Controller) ListTransactions(ctx *gin.Context) {
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

	transactions, err := c.repo.GetTransactionsByPortfolio(portfolioID)
	if err != nil {
		internalError(ctx, "Failed to list transactions")
		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

// CreateTransaction godoc
// @Summary Record a buy or sell against a holding
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction details"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /api/v1/transactions [post]
func (c *Controller) CreateTransaction(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid transaction request", err.Error())
		return
	}

	holding, err := c.repo.GetUserHolding(userID, req.HoldingID)
	if errors.Is(err, repo.ErrNotFound) {
		notFound(ctx, "Holding not found")
		return
	}
	if err != nil {
		internalError(ctx, "Failed to load holding")
		return
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	transaction := &models.Transaction{
		HoldingID:       holding.ID,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Price:           req.Price,
		Timestamp:       timestamp,
		Platform:        holding.Platform,
	}
	if err := c.repo.CreateTransaction(transaction); err != nil {
		internalError(ctx, "Failed to create transaction")
		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}
