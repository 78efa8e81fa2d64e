// Package handler holds the bridge's gin handlers.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lovemartco/hp-automation/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// Success sends a success response.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Unauthorized sends a 401 unauthorized response.
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// InternalError sends a 500 internal server error response.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, message))
}
