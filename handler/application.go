package handler

import (
	"context"
	"net/http"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	backend *service.Backend
	cache   *service.QueryCache
}

func NewApplicationHandler(backend *service.Backend, cache *service.QueryCache) *ApplicationHandler {
	return &ApplicationHandler{backend: backend, cache: cache}
}

// ListForJob serves the applications on one of the client's jobs.
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	jobID := c.Param("id")

	key := service.CacheKey("applications", accountID, jobID)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLApplications, func(ctx context.Context) (any, error) {
		return h.backend.JobApplications(ctx, accountID, jobID)
	})
	if err != nil {
		respondError(c, err, "Could not load applications. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

type ManageApplicationRequest struct {
	Action string `json:"action" binding:"required"`
	JobID  string `json:"job_id" binding:"required"`
}

// Manage accepts or rejects one application. Accepting assigns the worker
// and moves the job forward, so the job detail and listings are dropped
// along with the application list.
func (h *ApplicationHandler) Manage(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	applicationID := c.Param("id")

	var req ManageApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Action != model.ApplicationAccepted && req.Action != model.ApplicationRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be ACCEPTED or REJECTED"})
		return
	}

	if err := h.backend.ManageApplication(c.Request.Context(), accountID, applicationID, req.Action); err != nil {
		respondError(c, err, "Could not update the application. Please try again.")
		return
	}

	h.cache.Invalidate(
		service.CacheKey("applications", accountID, req.JobID),
		service.CacheKey("job", accountID, req.JobID),
	)
	h.cache.InvalidatePrefix(service.CacheKey("jobs", accountID))

	c.JSON(http.StatusOK, gin.H{"message": "Application updated"})
}
