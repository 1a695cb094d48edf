package controller

import (
	"net/http"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} models.User
// @Failure 400 {object} APIError
// @Failure 409 {object} APIError
// @Router /api/v1/auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid registration request", err.Error())
		return
	}

	if _, err := c.repo.GetUserByEmail(req.Email); err == nil {
		conflict(ctx, "Email already registered")
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		internalError(ctx, "Failed to check existing users")
		return
	}

	hashed, err := c.tokens.HashPassword(req.Password)
	if err != nil {
		internalError(ctx, "Failed to hash password")
		return
	}

	user := &models.User{
		Email:          req.Email,
		HashedPassword: hashed,
		FullName:       req.FullName,
	}
	if err := c.repo.CreateUser(user); err != nil {
		internalError(ctx, "Failed to create user")
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// Token godoc
// @Summary Exchange credentials for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} APIError
// @Router /api/v1/auth/token [post]
func (c *Controller) Token(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid login request", err.Error())
		return
	}

	user, err := c.repo.GetUserByEmail(req.Email)
	if err != nil {
		// same answer for unknown email and wrong password
		unauthorized(ctx, "Incorrect email or password")
		return
	}
	if err := c.tokens.CheckPassword(user.HashedPassword, req.Password); err != nil {
		unauthorized(ctx, "Incorrect email or password")
		return
	}

	access, err := c.tokens.IssueAccessToken(user.ID)
	if err != nil {
		internalError(ctx, "Failed to issue token")
		return
	}

	resp := TokenResponse{AccessToken: access, TokenType: "bearer"}
	if c.tokens.RefreshEnabled() {
		refresh, err := c.tokens.IssueRefreshToken(ctx.Request.Context(), user.ID)
		if err != nil {
			internalError(ctx, "Failed to issue refresh token")
			return
		}
		resp.RefreshToken = refresh
	}

	ctx.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Redeem a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} APIError
// @Failure 503 {object} APIError
// @Router /api/v1/auth/refresh [post]
func (c *Controller) Refresh(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequestWithDetails(ctx, "Invalid refresh request", err.Error())
		return
	}

	if !c.tokens.RefreshEnabled() {
		serviceUnavailable(ctx, "Refresh tokens are not enabled")
		return
	}

	userID, err := c.tokens.RedeemRefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		unauthorized(ctx, "Invalid refresh token")
		return
	}

	access, err := c.tokens.IssueAccessToken(userID)
	if err != nil {
		internalError(ctx, "Failed to issue token")
		return
	}
	refresh, err := c.tokens.IssueRefreshToken(ctx.Request.Context(), userID)
	if err != nil {
		internalError(ctx, "Failed to issue refresh token")
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} APIError
// @Router /api/v1/auth/me [get]
func (c *Controller) Me(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	user, err := c.repo.GetUserByID(userID)
	if err != nil {
		notFound(ctx, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, user)
}
