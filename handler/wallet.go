package handler

import (
	"context"
	"net/http"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	backend *service.Backend
	cache   *service.QueryCache
}

func NewWalletHandler(backend *service.Backend, cache *service.QueryCache) *WalletHandler {
	return &WalletHandler{backend: backend, cache: cache}
}

// PendingEarnings serves the escrow-buffered earnings view. Each earning is
// annotated with its display state: an active dispute holds an earning even
// after the buffer has elapsed.
func (h *WalletHandler) PendingEarnings(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	key := service.CacheKey("earnings", accountID)
	value, err := h.cache.Get(c.Request.Context(), key, service.TTLWallet, func(ctx context.Context) (any, error) {
		return h.backend.PendingEarnings(ctx, accountID)
	})
	if err != nil {
		respondError(c, err, "Could not load pending earnings. Please try again.")
		return
	}

	earnings := value.(*model.PendingEarnings)

	annotated := make([]gin.H, len(earnings.Earnings))
	var heldCount, releasableCount int
	for i := range earnings.Earnings {
		e := &earnings.Earnings[i]
		if e.Held() {
			heldCount++
		}
		if e.Releasable() {
			releasableCount++
		}
		annotated[i] = gin.H{
			"earning":    e,
			"held":       e.Held(),
			"releasable": e.Releasable(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"earnings":         annotated,
		"total_pending":    earnings.TotalPending,
		"total_count":      earnings.TotalCount,
		"held_count":       heldCount,
		"releasable_count": releasableCount,
	})
}
