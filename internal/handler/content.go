package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/repository"
)

// ContentHandler serves bulk CSV import and export of a tenant's ground
// truth.
type ContentHandler struct {
	repo   *repository.ContentRepository
	logger *zap.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(repo *repository.ContentRepository, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{repo: repo, logger: logger}
}

// Export streams the tenant's texts and classes as a CSV download.
// GET /api/:tenant/content
func (h *ContentHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=training_data.csv")
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	if err := h.repo.Export(c.Request.Context(), c.Param("tenant"), c.Writer); err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		h.logger.Error("Failed to export content", zap.Error(err))
		c.Abort()
	}
}

// Import creates texts and classes from an uploaded CSV file.
// POST /api/:tenant/content
func (h *ContentHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'file' required"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer reader.Close()

	result, err := h.repo.Import(c.Request.Context(), c.Param("tenant"), reader)
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to import content")
		return
	}
	c.JSON(http.StatusOK, result)
}
