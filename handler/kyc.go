package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

type KYCHandler struct {
	backend   *service.Backend
	cache     *service.QueryCache
	documents *service.DocumentService
}

func NewKYCHandler(backend *service.Backend, cache *service.QueryCache, documents *service.DocumentService) *KYCHandler {
	return &KYCHandler{backend: backend, cache: cache, documents: documents}
}

func (h *KYCHandler) key(accountID string) string {
	return service.CacheKey("kyc", accountID)
}

// Status serves the account's verification state, including whether the
// required document set is complete.
func (h *KYCHandler) Status(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	value, err := h.cache.Get(c.Request.Context(), h.key(accountID), service.TTLKYC, func(ctx context.Context) (any, error) {
		return h.backend.KYCStatus(ctx, accountID)
	})
	if err != nil {
		respondError(c, err, "Could not load the verification status. Please try again.")
		return
	}

	record := value.(*model.KYCRecord)
	c.JSON(http.StatusOK, gin.H{
		"status":    record.Status,
		"documents": record.Documents,
		"notes":     record.Notes,
		"complete":  record.Complete(),
	})
}

// Upload stores one verification document and returns its descriptor for a
// later Submit call. The document type must be SELFIE or GOVERNMENT_ID.
func (h *KYCHandler) Upload(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	docType := strings.ToUpper(c.PostForm("type"))
	if docType != model.DocumentSelfie && docType != model.DocumentGovernmentID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document type must be SELFIE or GOVERNMENT_ID"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	var contentType string
	switch ext {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and PDF files are allowed"})
		return
	}
	if docType == model.DocumentSelfie && ext == ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A selfie must be a JPEG or PNG image"})
		return
	}

	document, err := h.documents.UploadKYCDocument(c.Request.Context(), accountID, docType, header.Filename, file, header.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document"})
		return
	}

	c.JSON(http.StatusOK, document)
}

type SubmitKYCRequest struct {
	Documents []model.KYCDocument `json:"documents" binding:"required"`
}

// Submit forwards the uploaded document set for review. An incomplete set
// is rejected locally; the backend re-validates authoritatively.
func (h *KYCHandler) Submit(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	record := model.KYCRecord{Documents: req.Documents}
	if !record.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A selfie and at least one government ID are required"})
		return
	}

	if err := h.backend.SubmitKYC(c.Request.Context(), accountID, req.Documents); err != nil {
		respondError(c, err, "Could not submit the documents. Please try again.")
		return
	}

	h.cache.Invalidate(h.key(accountID))
	c.JSON(http.StatusOK, gin.H{"message": "Documents submitted for review", "status": model.KYCPending})
}
