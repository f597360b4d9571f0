package handler

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

func newMessageRouter(t *testing.T, backend *service.Backend, cache *service.QueryCache) *gin.Engine {
	t.Helper()
	handler := NewMessageHandler(backend, cache)

	router := gin.New()
	as := func(fn gin.HandlerFunc) gin.HandlerFunc { return asAccount("acc-1", "u@iayos.test", "WORKER", fn) }
	router.GET("/conversations", as(handler.Conversations))
	router.GET("/conversations/:id/messages", as(handler.Messages))
	router.POST("/conversations/:id/messages", as(handler.Send))
	return router
}

func TestMessageHandlerConversations(t *testing.T) {
	backend := jsonUpstream(t, `{"conversations":[{"id":"c-1","participants":["acc-1","acc-2"],"unread_count":2}]}`)
	router := newMessageRouter(t, backend, service.NewQueryCache())

	w := getJSON(router, "/conversations")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if len(body["conversations"].([]any)) != 1 {
		t.Errorf("Expected 1 conversation, got %v", body["conversations"])
	}
}

func TestMessageHandlerSendEmptyBody(t *testing.T) {
	var calls atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	router := newMessageRouter(t, backend, service.NewQueryCache())

	w := postJSON(router, "/conversations/c-1/messages", map[string]string{"body": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a blank message, got %d", w.Code)
	}
	if calls.Load() != 0 {
		t.Error("Blank messages must not reach the backend")
	}
}

func TestMessageHandlerSendAppendsToCachedPage(t *testing.T) {
	var historyCalls atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == "GET" {
			historyCalls.Add(1)
			_, _ = w.Write([]byte(`{"messages":[{"id":"m-1","conversation_id":"c-1","sender_id":"acc-2","body":"hello"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"m-2","conversation_id":"c-1","sender_id":"acc-1","body":"hi back"}`))
	})
	cache := service.NewQueryCache()
	router := newMessageRouter(t, backend, cache)

	// Warm the history cache, then send.
	if w := getJSON(router, "/conversations/c-1/messages"); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w := postJSON(router, "/conversations/c-1/messages", map[string]string{"body": "hi back"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// The confirmed message shows up without another upstream fetch.
	w = getJSON(router, "/conversations/c-1/messages")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	messages := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages after send, got %d", len(messages))
	}
	last := messages[1].(map[string]any)
	if last["id"] != "m-2" || last["body"] != "hi back" {
		t.Errorf("Expected the sent message appended, got %v", last)
	}
	if historyCalls.Load() != 1 {
		t.Errorf("Expected no refetch of the patched page, got %d calls", historyCalls.Load())
	}
}

func TestMessageHandlerSendInvalidatesConversations(t *testing.T) {
	var conversationCalls atomic.Int32
	backend := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/conversations" {
			conversationCalls.Add(1)
			_, _ = w.Write([]byte(`{"conversations":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"m-2","conversation_id":"c-1","sender_id":"acc-1","body":"hi"}`))
	})
	cache := service.NewQueryCache()
	router := newMessageRouter(t, backend, cache)

	getJSON(router, "/conversations")
	if conversationCalls.Load() != 1 {
		t.Fatalf("Expected 1 conversations call, got %d", conversationCalls.Load())
	}

	postJSON(router, "/conversations/c-1/messages", map[string]string{"body": "hi"})

	getJSON(router, "/conversations")
	if conversationCalls.Load() != 2 {
		t.Errorf("Expected the conversation list to refetch after a send, got %d calls", conversationCalls.Load())
	}
}
