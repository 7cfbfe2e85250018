package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/cloudant"
	"groundtruth/internal/repository"
)

// writeStoreError maps repository and store errors to HTTP responses.
// Store statuses worth acting on client-side (404, 409) pass through
// unchanged; everything else collapses to a 500 with a stable message.
func writeStoreError(c *gin.Context, logger *zap.Logger, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrWrongTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, repository.ErrUnsupportedPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var statusErr *cloudant.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusConflict || statusErr.StatusCode == http.StatusNotFound) {
			c.JSON(statusErr.StatusCode, gin.H{"error": statusErr.Body})
			return
		}
		logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
