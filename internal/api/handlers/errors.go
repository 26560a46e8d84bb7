package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-tracker/backend/internal/logger"
	"github.com/codyseavey/mtg-tracker/backend/internal/services"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoSnapshots):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCollection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrCardNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCatalogUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Get().Errorw("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
