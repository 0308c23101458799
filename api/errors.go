package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"article-paywall/services"
)

// respondError übersetzt Service-Fehler in Status und Body.
func respondError(c *gin.Context, err error, log *zap.Logger) {
	var svcErr *services.Error
	message := ""
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message})
	case errors.Is(err, services.ErrPaywallExceeded):
		c.JSON(http.StatusUnauthorized, gin.H{"message": message})
	case errors.Is(err, services.ErrUnauthenticated):
		c.Status(http.StatusUnauthorized)
	default:
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
