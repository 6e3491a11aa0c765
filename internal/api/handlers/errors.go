package handlers

import (
	"context"
	"errors"
	"net/http"

	"stratlab/internal/api/models"
	"stratlab/internal/repository"
	"stratlab/internal/runner"
	"stratlab/types"

	"github.com/gin-gonic/gin"
)

// writeError maps an error from the runner onto a status code and the JSON
// error body.
func writeError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func classify(err error) (int, models.ErrorDetail) {
	detail := models.ErrorDetail{Message: err.Error()}

	var btErr *types.BacktestError
	if errors.As(err, &btErr) {
		detail.Param = btErr.Param
		detail.Constraint = btErr.Constraint
		switch {
		case errors.Is(btErr.Kind, types.ErrInvalidConfig):
			detail.Code = "INVALID_CONFIG"
			return http.StatusBadRequest, detail
		case errors.Is(btErr.Kind, types.ErrUnsupportedStrategy):
			detail.Code = "UNSUPPORTED_STRATEGY"
			return http.StatusBadRequest, detail
		case errors.Is(btErr.Kind, types.ErrInsufficientData):
			detail.Code = "INSUFFICIENT_DATA"
			return http.StatusUnprocessableEntity, detail
		default:
			detail.Code = "INTERNAL_ERROR"
			return http.StatusInternalServerError, detail
		}
	}

	switch {
	case errors.Is(err, repository.ErrAssetNotFound), errors.Is(err, repository.ErrNoCandles):
		detail.Code = "DATA_NOT_FOUND"
		return http.StatusNotFound, detail
	case errors.Is(err, repository.ErrIntervalNotSupported):
		detail.Code = "INVALID_CONFIG"
		detail.Param = "interval"
		return http.StatusBadRequest, detail
	case errors.Is(err, runner.ErrNoStore):
		detail.Code = "NOT_IMPLEMENTED"
		return http.StatusNotImplemented, detail
	case errors.Is(err, context.DeadlineExceeded):
		detail.Code = "TIMEOUT"
		return http.StatusGatewayTimeout, detail
	case errors.Is(err, context.Canceled):
		detail.Code = "CANCELLED"
		return http.StatusServiceUnavailable, detail
	}

	detail.Code = "INTERNAL_ERROR"
	detail.Message = "An unexpected error occurred"
	return http.StatusInternalServerError, detail
}
