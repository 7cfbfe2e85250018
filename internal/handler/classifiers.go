package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/models"
	"groundtruth/internal/nlc"
	"groundtruth/internal/repository"
)

// ClassifierHandler proxies the classifier service endpoints.
type ClassifierHandler struct {
	classifier *nlc.Client
	content    *repository.ContentRepository
	logger     *zap.Logger
}

// NewClassifierHandler creates a new classifier handler.
func NewClassifierHandler(classifier *nlc.Client, content *repository.ContentRepository, logger *zap.Logger) *ClassifierHandler {
	return &ClassifierHandler{classifier: classifier, content: content, logger: logger}
}

// List returns all classifiers.
// GET /api/:tenant/classifiers
func (h *ClassifierHandler) List(c *gin.Context) {
	classifiers, err := h.classifier.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list classifiers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classifiers"})
		return
	}
	c.JSON(http.StatusOK, classifiers)
}

// Status returns one classifier's training status.
// GET /api/:tenant/classifiers/:id
func (h *ClassifierHandler) Status(c *gin.Context) {
	classifier, err := h.classifier.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to fetch classifier status", zap.Error(err), zap.String("classifier_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch classifier status"})
		return
	}
	c.JSON(http.StatusOK, classifier)
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// Classify runs one text through a trained classifier.
// POST /api/:tenant/classifiers/:id/classify
func (h *ClassifierHandler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.logger.Error("Failed to classify text", zap.Error(err), zap.String("classifier_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to classify text"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Remove deletes a classifier.
// DELETE /api/:tenant/classifiers/:id
func (h *ClassifierHandler) Remove(c *gin.Context) {
	if err := h.classifier.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("Failed to remove classifier", zap.Error(err), zap.String("classifier_id", c.Param("id")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove classifier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Classifier deleted"})
}

// Train starts a training job. The request may carry its own labeled
// examples; with an empty list the tenant's stored ground truth is used.
// POST /api/:tenant/classifiers
func (h *ClassifierHandler) Train(c *gin.Context) {
	var req models.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var data []byte
	var err error
	if len(req.Data) > 0 {
		data, err = buildTrainingCSV(req.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		data, err = h.content.TrainingCSV(c.Request.Context(), c.Param("tenant"))
		if err != nil {
			writeStoreError(c, h.logger, err, "Failed to build training data")
			return
		}
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No labeled training data available"})
		return
	}

	meta := nlc.TrainingMetadata{Language: req.Language, Name: req.Name}
	classifier, err := h.classifier.Train(c.Request.Context(), meta, data)
	if err != nil {
		h.logger.Error("Failed to start training", zap.Error(err), zap.String("name", req.Name))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start training"})
		return
	}
	c.JSON(http.StatusOK, classifier)
}

// buildTrainingCSV renders request-supplied examples in the service's
// training format. Unlabeled examples are rejected rather than silently
// dropped, since the caller chose them explicitly.
func buildTrainingCSV(examples []models.TrainingExample) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, example := range examples {
		if len(example.Classes) == 0 {
			return nil, fmt.Errorf("text %q has no classes", example.Text)
		}
		record := append([]string{example.Text}, example.Classes...)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
