package controller

import (
	"net/http"

	"github.com/Eddie1114/portfolio-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var (
	ErrInvalidControllerConfig = errors.New("invalid controller config")
)

type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func errorResponse(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, APIError{Error: message})
}

func errorWithDetails(ctx *gin.Context, status int, message string, details string) {
	ctx.JSON(status, APIError{Error: message, Details: details})
}

func badRequest(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusBadRequest, message)
}

func badRequestWithDetails(ctx *gin.Context, message string, details string) {
	errorWithDetails(ctx, http.StatusBadRequest, message, details)
}

func unauthorized(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusUnauthorized, message)
}

func notFound(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusNotFound, message)
}

func conflict(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusConflict, message)
}

func internalError(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusInternalServerError, message)
}

func serviceUnavailable(ctx *gin.Context, message string) {
	errorResponse(ctx, http.StatusServiceUnavailable, message)
}

// currentUser pulls the authenticated user id set by the JWT middleware.
// A handler reached without it is a routing bug, answered with 401 anyway.
func currentUser(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		unauthorized(ctx, "Not authenticated")
	}
	return userID, ok
}
