package handler

import (
	"context"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	backend   *service.Backend
	cache     *service.QueryCache
	documents *service.DocumentService
}

func NewJobHandler(backend *service.Backend, cache *service.QueryCache, documents *service.DocumentService) *JobHandler {
	return &JobHandler{backend: backend, cache: cache, documents: documents}
}

// Categories serves the job category list. The list is close to static, so
// it is cached globally with a long staleness window.
func (h *JobHandler) Categories(c *gin.Context) {
	value, err := h.cache.Get(c.Request.Context(), service.CacheKey("categories"), service.TTLCategories, func(ctx context.Context) (any, error) {
		return h.backend.Categories(ctx)
	})
	if err != nil {
		respondError(c, err, "Could not load categories. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

// List serves the job listing for the current account, keyed per status tab
// so switching tabs never cross-contaminates cached pages.
func (h *JobHandler) List(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	status := c.Query("status")

	key := service.CacheKey("jobs", accountID, status)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLJobs, func(ctx context.Context) (any, error) {
		return h.backend.Jobs(ctx, accountID, status)
	})
	if err != nil {
		respondError(c, err, "Could not load jobs. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

// Get serves one job's detail through the cache.
func (h *JobHandler) Get(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	job, err := h.cachedJob(c, accountID, jobID)
	if err != nil {
		respondError(c, err, "Could not load the job. Please try again.")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) cachedJob(c *gin.Context, accountID, jobID string) (*model.Job, error) {
	key := service.CacheKey("job", accountID, jobID)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLJobs, func(ctx context.Context) (any, error) {
		return h.backend.Job(ctx, accountID, jobID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*model.Job), nil
}

// guardNotTerminal rejects workflow mutations on completed or cancelled
// jobs. The check runs against the cached detail; the backend re-validates
// authoritatively either way.
func (h *JobHandler) guardNotTerminal(c *gin.Context, accountID, jobID string) bool {
	key := service.CacheKey("job", accountID, jobID)
	if value, ok := h.cache.Peek(key); ok {
		if job, ok := value.(*model.Job); ok && job.IsTerminal() {
			c.JSON(http.StatusConflict, gin.H{"error": "This job can no longer be updated"})
			return false
		}
	}
	return true
}

// invalidateJob drops every cached view a job mutation can affect: the
// detail and all listing tabs for the account.
func (h *JobHandler) invalidateJob(accountID, jobID string) {
	h.cache.Invalidate(service.CacheKey("job", accountID, jobID))
	h.cache.InvalidatePrefix(service.CacheKey("jobs", accountID))
}

// ConfirmWorkStarted records the client-side confirmation that the worker
// has begun.
func (h *JobHandler) ConfirmWorkStarted(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	if !h.guardNotTerminal(c, accountID, jobID) {
		return
	}

	if err := h.backend.ConfirmWorkStarted(c.Request.Context(), accountID, jobID); err != nil {
		respondError(c, err, "Could not update the job. Please try again.")
		return
	}

	h.invalidateJob(accountID, jobID)
	c.JSON(http.StatusOK, gin.H{"message": "Work start confirmed"})
}

type MarkCompleteRequest struct {
	Photos []string `json:"photos"`
	Notes  string   `json:"notes"`
}

// MarkComplete is the worker half of the completion handshake. Photos are
// uploaded separately via UploadCompletionPhoto; this call carries their
// URLs.
func (h *JobHandler) MarkComplete(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	var req MarkCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !h.guardNotTerminal(c, accountID, jobID) {
		return
	}

	if err := h.backend.MarkJobComplete(c.Request.Context(), accountID, jobID, req.Photos, req.Notes); err != nil {
		respondError(c, err, "Could not mark the job complete. Please try again.")
		return
	}

	h.invalidateJob(accountID, jobID)
	c.JSON(http.StatusOK, gin.H{"message": "Marked complete"})
}

// ApproveCompletion is the client half of the handshake. Approval moves the
// payment into the escrow buffer, so the wallet view is invalidated too.
func (h *JobHandler) ApproveCompletion(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	if !h.guardNotTerminal(c, accountID, jobID) {
		return
	}

	if err := h.backend.ApproveCompletion(c.Request.Context(), accountID, jobID); err != nil {
		respondError(c, err, "Could not approve the completion. Please try again.")
		return
	}

	h.invalidateJob(accountID, jobID)
	h.cache.Invalidate(service.CacheKey("earnings", accountID))
	c.JSON(http.StatusOK, gin.H{"message": "Completion approved"})
}

// UploadCompletionPhoto stores one photo for a completion submission and
// returns its URL.
func (h *JobHandler) UploadCompletionPhoto(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType, ok := imageContentType(header.Filename, header.Header)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG and PNG images are allowed"})
		return
	}

	url, err := h.documents.UploadCompletionPhoto(c.Request.Context(), accountID, jobID, header.Filename, file, header.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// imageContentType validates an uploaded image by extension and returns the
// content type to store it under.
func imageContentType(filename string, header textproto.MIMEHeader) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	}
	if ct := header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		return ct, true
	}
	return "", false
}
