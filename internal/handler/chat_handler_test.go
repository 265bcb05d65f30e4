package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-g-bot/internal/adapter"
	"github.com/hpn/hpn-g-bot/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubChatter echoes the message back and records the ids it was given.
type stubChatter struct {
	lastIds domain.Ids
	panics  bool
}

func (s *stubChatter) Chat(ctx context.Context, message string, ids domain.Ids) (string, domain.Ids) {
	if s.panics {
		panic("boom")
	}
	s.lastIds = ids
	if message == "" {
		return "", domain.Ids{}
	}
	return "echo: " + message, domain.Ids{ParentMessageID: "chatcmpl-1", ConversationID: "0"}
}

func (s *stubChatter) Model() string {
	return "gpt-35-turbo-16k"
}

func newTestRouter(chatter Chatter) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewChatHandler(chatter, WithLogger(logger)), logger)
}

func postChat(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChat(t *testing.T) {
	chatter := &stubChatter{}
	router := newTestRouter(chatter)

	w := postChat(t, router, `{"message":"hi","parent_message_id":"p-0","conversation_id":"7"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Text != "echo: hi" {
		t.Errorf("Text = %q, want 'echo: hi'", resp.Text)
	}
	if resp.ParentMessageID != "chatcmpl-1" || resp.ConversationID != "0" {
		t.Errorf("ids = %+v, want chatcmpl-1/0", resp)
	}
	if chatter.lastIds != (domain.Ids{ParentMessageID: "p-0", ConversationID: "7"}) {
		t.Errorf("chatter got ids %+v, want p-0/7", chatter.lastIds)
	}
}

func TestHandleChat_EmptyMessageIsNotAnError(t *testing.T) {
	router := newTestRouter(&stubChatter{})

	w := postChat(t, router, `{"message":""}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"text":""`) {
		t.Errorf("body = %s, want empty text", w.Body.String())
	}
}

func TestHandleChat_InvalidBody(t *testing.T) {
	router := newTestRouter(&stubChatter{})

	w := postChat(t, router, `{"message":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp adapter.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error.Type != "invalid_request_error" {
		t.Errorf("Error.Type = %q, want invalid_request_error", resp.Error.Type)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(&stubChatter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"model":"gpt-35-turbo-16k"`) {
		t.Errorf("body = %s, want model", w.Body.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(&stubChatter{})

	w := postChat(t, router, `{"message":"hi"}`)
	generated := w.Header().Get(RequestIDHeader)
	if len(generated) != 36 {
		t.Errorf("%s = %q, want a generated uuid", RequestIDHeader, generated)
	}

	const given = "6f1c1e5a-8a4b-4d7e-9c1e-0a7b3b6f9d21"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != given {
		t.Errorf("%s = %q, want propagated %q", RequestIDHeader, got, given)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := newTestRouter(&stubChatter{panics: true})

	w := postChat(t, router, `{"message":"hi"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal_error") {
		t.Errorf("body = %s, want internal_error code", w.Body.String())
	}
}
