package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidFile),
		errors.Is(err, types.ErrInvalidPath),
		errors.Is(err, types.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, types.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func errorResponse(err error) types.DataResponse {
	return types.DataResponse{
		Status:  false,
		Message: err.Error(),
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.Error(err)
	c.JSON(status, errorResponse(err))
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   data,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, types.DataResponse{
		Status:  false,
		Message: message,
	})
}
