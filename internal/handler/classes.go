package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/repository"
)

// ClassHandler serves the tenant-scoped class endpoints.
type ClassHandler struct {
	repo   *repository.ClassRepository
	logger *zap.Logger
}

// NewClassHandler creates a new class handler.
func NewClassHandler(repo *repository.ClassRepository, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{repo: repo, logger: logger}
}

type classRequest struct {
	Name string `json:"name" binding:"required"`
}

// Query returns all classes for the tenant, bounded to the first 10,000.
// GET /api/:tenant/classes
func (h *ClassHandler) Query(c *gin.Context) {
	classes, err := h.repo.Query(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to fetch classes")
		return
	}
	c.JSON(http.StatusOK, classes)
}

// Create stores a new class.
// POST /api/:tenant/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.repo.Create(c.Request.Context(), c.Param("tenant"), req.Name)
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to create class")
		return
	}
	c.JSON(http.StatusCreated, class)
}

// Update renames a class.
// PUT /api/:tenant/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.repo.Update(c.Request.Context(), c.Param("tenant"), c.Param("id"), req.Name)
	if err != nil {
		writeStoreError(c, h.logger, err, "Failed to update class")
		return
	}
	c.JSON(http.StatusOK, class)
}

// Delete removes a class and unlinks it from texts.
// DELETE /api/:tenant/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("tenant"), c.Param("id")); err != nil {
		writeStoreError(c, h.logger, err, "Failed to delete class")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted"})
}
