package handler

import (
	"context"
	"net/http"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	backend *service.Backend
	cache   *service.QueryCache
}

func NewNotificationHandler(backend *service.Backend, cache *service.QueryCache) *NotificationHandler {
	return &NotificationHandler{backend: backend, cache: cache}
}

func (h *NotificationHandler) key(accountID string) string {
	return service.CacheKey("notifications", accountID)
}

// List serves the notification feed with its unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	value, err := h.cache.Get(c.Request.Context(), h.key(accountID), service.TTLNotifications, func(ctx context.Context) (any, error) {
		return h.backend.Notifications(ctx, accountID)
	})
	if err != nil {
		respondError(c, err, "Could not load notifications. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

// MarkRead flags one notification as read and drops the cached feed so the
// unread count refetches.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	notificationID := c.Param("id")

	if err := h.backend.MarkNotificationRead(c.Request.Context(), accountID, notificationID); err != nil {
		respondError(c, err, "Could not update the notification. Please try again.")
		return
	}

	h.cache.Invalidate(h.key(accountID))
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	notificationID := c.Param("id")

	if err := h.backend.DeleteNotification(c.Request.Context(), accountID, notificationID); err != nil {
		respondError(c, err, "Could not delete the notification. Please try again.")
		return
	}

	h.cache.Invalidate(h.key(accountID))
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
