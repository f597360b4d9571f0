package handler

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

func newKYCRouter(t *testing.T, backend *service.Backend, cache *service.QueryCache) *gin.Engine {
	t.Helper()
	handler := NewKYCHandler(backend, cache, nil)

	router := gin.New()
	as := func(fn gin.HandlerFunc) gin.HandlerFunc { return asAccount("acc-1", "u@iayos.test", "WORKER", fn) }
	router.GET("/kyc/status", as(handler.Status))
	router.POST("/kyc/submit", as(handler.Submit))
	return router
}

func TestKYCHandlerStatus(t *testing.T) {
	backend := jsonUpstream(t, `{
		"status": "NOT_SUBMITTED",
		"documents": [
			{"type":"SELFIE","url":"https://files.test/selfie.jpg"},
			{"type":"GOVERNMENT_ID","url":"https://files.test/id.jpg"}
		]
	}`)
	router := newKYCRouter(t, backend, service.NewQueryCache())

	w := getJSON(router, "/kyc/status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "NOT_SUBMITTED" {
		t.Errorf("Expected status NOT_SUBMITTED, got %v", body["status"])
	}
	if body["complete"] != true {
		t.Error("Expected complete=true with a selfie and a government ID")
	}
}

func TestKYCHandlerSubmitIncomplete(t *testing.T) {
	var calls atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	router := newKYCRouter(t, backend, service.NewQueryCache())

	// A government ID alone is not a complete set.
	w := postJSON(router, "/kyc/submit", map[string]any{
		"documents": []model.KYCDocument{
			{Type: model.DocumentGovernmentID, URL: "https://files.test/id.jpg", UploadedAt: time.Now()},
		},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an incomplete set, got %d", w.Code)
	}
	if calls.Load() != 0 {
		t.Error("Incomplete submission must not reach the backend")
	}
}

func TestKYCHandlerSubmit(t *testing.T) {
	var submitted atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/kyc/submit" {
			submitted.Add(1)
		}
		_, _ = w.Write([]byte(`{}`))
	})
	router := newKYCRouter(t, backend, service.NewQueryCache())

	w := postJSON(router, "/kyc/submit", map[string]any{
		"documents": []model.KYCDocument{
			{Type: model.DocumentSelfie, URL: "https://files.test/selfie.jpg", UploadedAt: time.Now()},
			{Type: model.DocumentGovernmentID, URL: "https://files.test/id.jpg", UploadedAt: time.Now()},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if submitted.Load() != 1 {
		t.Errorf("Expected 1 submit call, got %d", submitted.Load())
	}
	body := decodeBody(t, w)
	if body["status"] != model.KYCPending {
		t.Errorf("Expected PENDING status after submission, got %v", body["status"])
	}
}

func TestKYCHandlerSubmitInvalidatesStatus(t *testing.T) {
	var statusCalls atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/kyc/status" {
			statusCalls.Add(1)
			_, _ = w.Write([]byte(`{"status":"NOT_SUBMITTED","documents":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	cache := service.NewQueryCache()
	router := newKYCRouter(t, backend, cache)

	getJSON(router, "/kyc/status")
	getJSON(router, "/kyc/status")
	if statusCalls.Load() != 1 {
		t.Fatalf("Expected cached status reads, got %d calls", statusCalls.Load())
	}

	postJSON(router, "/kyc/submit", map[string]any{
		"documents": []model.KYCDocument{
			{Type: model.DocumentSelfie, URL: "https://files.test/selfie.jpg", UploadedAt: time.Now()},
			{Type: model.DocumentGovernmentID, URL: "https://files.test/id.jpg", UploadedAt: time.Now()},
		},
	})

	getJSON(router, "/kyc/status")
	if statusCalls.Load() != 2 {
		t.Errorf("Expected the status to refetch after submission, got %d calls", statusCalls.Load())
	}
}
