package handler

import (
	"context"
	"net/http"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler resolves the role-specific landing route and assembles
// the dashboard summary from cached reads. Reaching it at all requires a
// valid session; the auth middleware rejects anonymous requests before any
// backend call happens.
type DashboardHandler struct {
	backend *service.Backend
	cache   *service.QueryCache
}

func NewDashboardHandler(backend *service.Backend, cache *service.QueryCache) *DashboardHandler {
	return &DashboardHandler{backend: backend, cache: cache}
}

// Resolve returns the dashboard route for the session's role. An unknown
// role gets the role-selection route rather than a guess.
func (h *DashboardHandler) Resolve(c *gin.Context) {
	profileType := middleware.GetProfileType(c)

	redirect := model.DashboardPath(profileType)
	if redirect == "" {
		c.JSON(http.StatusOK, gin.H{"redirect": "/select-role", "profile_type": profileType})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": redirect, "profile_type": profileType})
}

// Summary returns the counts the dashboard header shows. Both reads go
// through the cache, so a dashboard refresh inside the staleness window
// costs no upstream calls.
func (h *DashboardHandler) Summary(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	jobsKey := service.CacheKey("jobs", accountID, "")
	jobs, err := h.cache.Get(c.Request.Context(), jobsKey, service.TTLJobs, func(ctx context.Context) (any, error) {
		return h.backend.Jobs(ctx, accountID, "")
	})
	if err != nil {
		respondError(c, err, "Could not load the dashboard. Please try again.")
		return
	}

	notifKey := service.CacheKey("notifications", accountID)
	notifications, err := h.cache.Get(c.Request.Context(), notifKey, service.TTLNotifications, func(ctx context.Context) (any, error) {
		return h.backend.Notifications(ctx, accountID)
	})
	if err != nil {
		respondError(c, err, "Could not load the dashboard. Please try again.")
		return
	}

	jobList := jobs.(*service.JobList)
	notifList := notifications.(*model.NotificationList)

	var active int
	for i := range jobList.Jobs {
		if !jobList.Jobs[i].IsTerminal() {
			active++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"job_count":        jobList.TotalCount,
		"active_job_count": active,
		"unread_count":     notifList.UnreadCount,
	})
}
