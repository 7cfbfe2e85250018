package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/models"
	"groundtruth/internal/repository"
)

// TextHandler serves the tenant-scoped text endpoints.
type TextHandler struct {
	repo   *repository.TextRepository
	logger *zap.Logger
}

// NewTextHandler creates a new text handler.
func NewTextHandler(repo *repository.TextRepository, logger *zap.Logger) *TextHandler {
	return &TextHandler{repo: repo, logger: logger}
}

type textRequest struct {
	Value   string   `json:"value" binding:"required"`
	Classes []string `json:"classes"`
}

// Query returns all texts for the tenant, bounded to the first 10,000.
// GET /api/:tenant/texts
func (h *TextHandler) Query(c *gin.Context) {
	texts, err := h.repo.Query(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to fetch texts")
		return
	}
	c.JSON(http.StatusOK, texts)
}

// Create stores a new text with its class references.
// POST /api/:tenant/texts
func (h *TextHandler) Create(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := h.repo.Create(c.Request.Context(), c.Param("tenant"), req.Value, req.Classes)
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to create text")
		return
	}
	c.JSON(http.StatusCreated, text)
}

// Patch applies an ordered list of {op,path,value} operations to one text.
// PATCH /api/:tenant/texts/:id
func (h *TextHandler) Patch(c *gin.Context) {
	var ops []models.PatchOp
	if err := c.ShouldBindJSON(&ops); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(ops) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patch body must carry at least one operation"})
		return
	}

	text, err := h.repo.Patch(c.Request.Context(), c.Param("tenant"), c.Param("id"), ops)
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to patch text")
		return
	}
	c.JSON(http.StatusOK, text)
}

// Delete removes one text.
// DELETE /api/:tenant/texts/:id
func (h *TextHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("tenant"), c.Param("id")); err != nil {
		writeStoreError(c, h.logger, err, "Failed to delete text")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Text deleted"})
}

// DeleteAll removes every text owned by the tenant.
// DELETE /api/:tenant/texts
func (h *TextHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.repo.DeleteAll(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to delete texts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Texts deleted",
		"deleted": deleted,
	})
}
