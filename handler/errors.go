package handler

import (
	"errors"
	"net/http"

	"github.com/Banyel3/iayos-sub011/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// respondError maps a backend or validation failure onto an HTTP response.
// Raw backend text never passes through untouched: the body carries the
// normalized message plus the category so clients can branch on it.
func respondError(c *gin.Context, err error, fallback string) {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		body := gin.H{"error": validationErr.Message, "category": apperr.CategoryGeneric}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	category := apperr.ClassifyError(err)
	message := apperr.Normalize(err, fallback)

	c.JSON(statusFor(category, err), gin.H{
		"error":    message,
		"category": category,
	})
}

// statusFor picks the response status for a classified error. Upstream 4xx
// statuses are passed through for generic failures so clients see the same
// status the core API produced.
func statusFor(category apperr.Category, err error) int {
	switch category {
	case apperr.CategoryVerificationRequired:
		return http.StatusForbidden
	case apperr.CategoryRateLimited:
		return http.StatusTooManyRequests
	case apperr.CategoryServiceUnavailable:
		return http.StatusServiceUnavailable
	}

	var httpErr *apperr.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 500 {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}
