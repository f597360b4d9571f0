package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	backend *service.Backend
	cache   *service.QueryCache
}

func NewMessageHandler(backend *service.Backend, cache *service.QueryCache) *MessageHandler {
	return &MessageHandler{backend: backend, cache: cache}
}

// Conversations serves the conversation list. Messaging data turns over
// fast, so it gets the shortest staleness window.
func (h *MessageHandler) Conversations(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	key := service.CacheKey("conversations", accountID)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLConversations, func(ctx context.Context) (any, error) {
		return h.backend.Conversations(ctx, accountID)
	})
	if err != nil {
		respondError(c, err, "Could not load conversations. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

// Messages serves one conversation's history.
func (h *MessageHandler) Messages(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	conversationID := c.Param("id")

	key := service.CacheKey("messages", accountID, conversationID)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLMessages, func(ctx context.Context) (any, error) {
		return h.backend.Messages(ctx, accountID, conversationID)
	})
	if err != nil {
		respondError(c, err, "Could not load messages. Please try again.")
		return
	}
	c.JSON(http.StatusOK, value)
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Send posts one message. The confirmed message is appended to the cached
// page in place so the sender sees it immediately; the conversation list is
// dropped so its preview and ordering refetch.
func (h *MessageHandler) Send(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	conversationID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	message, err := h.backend.SendMessage(c.Request.Context(), accountID, conversationID, req.Body)
	if err != nil {
		respondError(c, err, "Could not send the message. Please try again.")
		return
	}

	key := service.CacheKey("messages", accountID, conversationID)
	if value, ok := h.cache.Peek(key); ok {
		if page, ok := value.(*model.MessagePage); ok {
			patched := &model.MessagePage{Messages: append(append([]model.Message{}, page.Messages...), *message)}
			h.cache.Set(key, patched)
		}
	}
	h.cache.Invalidate(service.CacheKey("conversations", accountID))

	c.JSON(http.StatusOK, message)
}
