package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yigit/canvasmirror/internal/app/models/dto"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to API responses
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(404, dto.NewAPIErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found"),
		))
		return
	case errors.Is(err, apperrors.ErrSourceUnavailable), errors.Is(err, apperrors.ErrSourceRejected):
		c.JSON(502, dto.NewAPIErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Source system error").WithDetails(err.Error()),
		))
		return
	case errors.Is(err, apperrors.ErrPersistenceFailure):
		c.JSON(500, dto.NewAPIErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database error"),
		))
		return
	default:
		c.JSON(500, dto.NewAPIErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		))
		return
	}
}
