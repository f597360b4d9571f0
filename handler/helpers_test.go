package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Security: config.SecurityConfig{
			OTPResendWaitSeconds: 60,
			OTPLength:            6,
		},
	}
}

// newUpstream starts a fake core API and returns a Backend pointed at it.
func newUpstream(t *testing.T, fn http.HandlerFunc) *service.Backend {
	t.Helper()
	server := httptest.NewServer(fn)
	t.Cleanup(server.Close)
	return service.NewBackend(&config.BackendConfig{BaseURL: server.URL, TimeoutSeconds: 5})
}

// jsonUpstream is an upstream that answers every request with one JSON body.
func jsonUpstream(t *testing.T, body string) *service.Backend {
	t.Helper()
	return newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func openTestStore(t *testing.T) *service.LocalStore {
	t.Helper()
	store, err := service.OpenLocalStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// postJSON performs a JSON POST against the router and returns the recorder.
func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// asAccount injects session values the way the auth middleware would.
func asAccount(accountID, email, profileType string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Set("email", email)
		c.Set("profile_type", profileType)
		next(c)
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return body
}
