package handler

import (
	"net/http"

	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

// PreferencesHandler reads and writes UX preferences in the local store.
// Preferences are device-scoped, not account-scoped, matching where they
// live.
type PreferencesHandler struct {
	store *service.LocalStore
}

func NewPreferencesHandler(store *service.LocalStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

var validThemes = map[string]bool{"light": true, "dark": true, "system": true}

// Get returns the stored preferences, falling back to defaults when a key
// has never been written.
func (h *PreferencesHandler) Get(c *gin.Context) {
	theme, ok, err := h.store.Get(service.KeyTheme)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read preferences"})
		return
	}
	if !ok {
		theme = "system"
	}

	language, ok, err := h.store.Get(service.KeyLanguage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read preferences"})
		return
	}
	if !ok {
		language = "en"
	}

	c.JSON(http.StatusOK, gin.H{"theme": theme, "language": language})
}

type UpdatePreferencesRequest struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// Update writes the provided preferences. Absent fields are left unchanged.
func (h *PreferencesHandler) Update(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Theme != "" {
		if !validThemes[req.Theme] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Theme must be light, dark or system"})
			return
		}
		if err := h.store.Set(service.KeyTheme, req.Theme); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
			return
		}
	}

	if req.Language != "" {
		if err := h.store.Set(service.KeyLanguage, req.Language); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
			return
		}
	}

	h.Get(c)
}
