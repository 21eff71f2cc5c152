package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

type BatchHandler struct {
	service svc.BatchProcessor
	logger  logger.Logger
}

// SubmitResponse acknowledges an accepted batch submission.
type SubmitResponse struct {
	JobID     string `json:"jobId"`
	State     string `json:"state"`
	Operation string `json:"operation"`
	Inputs    int    `json:"inputs"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewBatchHandler(service svc.BatchProcessor, log logger.Logger) *BatchHandler {
	return &BatchHandler{
		service: service,
		logger:  log.Named("api"),
	}
}

// SubmitBatch accepts a batch submission and queues it.
func (h *BatchHandler) SubmitBatch(c *gin.Context) {
	var sub svc.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	jobID, err := h.service.Submit(c.Request.Context(), &sub)
	if err != nil {
		status := http.StatusInternalServerError
		// Validation failures are the caller's to fix.
		if isValidationError(err) {
			status = http.StatusBadRequest
		}
		h.handleError(c, status, "Failed to submit batch", err)
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{
		JobID:     jobID,
		State:     "pending",
		Operation: sub.Operation,
		Inputs:    len(sub.Inputs),
	})
}

// GetStatus reports a queued batch's progress and, once finished, its
// per-file summary.
func (h *BatchHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		h.handleError(c, http.StatusBadRequest, "Job ID is required", nil)
		return
	}

	status, err := h.service.Status(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, http.StatusNotFound, "Job not found", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// CancelBatch removes a still-queued batch.
func (h *BatchHandler) CancelBatch(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		h.handleError(c, http.StatusBadRequest, "Job ID is required", nil)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), jobID); err != nil {
		h.handleError(c, http.StatusConflict, "Failed to cancel job", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobId": jobID,
		"state": "cancelled",
	})
}

// Health is the liveness probe.
func (h *BatchHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BatchHandler) handleError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
		h.logger.Error(message, logger.Error(err))
	} else {
		h.logger.Error(message)
	}
	c.JSON(status, resp)
}

// isValidationError distinguishes bad submissions from infrastructure
// failures by the error text the validation path produces.
func isValidationError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"invalid", "required", "unsupported", "unknown operation",
		"no input", "too many inputs",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
