package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-g-bot/internal/domain"
)

// sseChunk renders a chat.completion.chunk event payload.
func sseChunk(id string, index int, content string) string {
	payload := map[string]interface{}{
		"id":      id,
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-35-turbo-16k",
		"choices": []map[string]interface{}{
			{
				"index":         index,
				"delta":         map[string]interface{}{"content": content},
				"finish_reason": nil,
			},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func newStreamingServer(t *testing.T, events []string, captured *map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("Authorization = %q, want Bearer test-api-key", got)
		}
		if captured != nil {
			body := map[string]interface{}{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			*captured = body
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIAdapter_StreamChat(t *testing.T) {
	var body map[string]interface{}
	server := newStreamingServer(t, []string{
		sseChunk("chatcmpl-1", 0, "Hello"),
		sseChunk("chatcmpl-1", 0, ", world"),
	}, &body)
	defer server.Close()

	a := NewOpenAIAdapter("test-api-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	stream, err := a.StreamChat(context.Background(), ChatRequest{
		Model: "gpt-35-turbo-16k",
		Messages: []domain.Message{
			domain.SystemMessage("You are a reviewer."),
			domain.UserMessage("Review this."),
		},
		MaxTokens:   3000,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	defer stream.Close()

	var chunks []Chunk
	for stream.Next() {
		chunks = append(chunks, stream.Current())
	}
	require.NoError(t, stream.Err())
	require.Len(t, chunks, 2)

	assert.Equal(t, "chatcmpl-1", chunks[1].ID)
	assert.Equal(t, "Hello", chunks[0].Choices[0].Text)
	assert.Equal(t, ", world", chunks[1].Choices[0].Text)

	assert.Equal(t, "gpt-35-turbo-16k", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.EqualValues(t, 3000, body["max_tokens"])
	assert.EqualValues(t, 0.2, body["temperature"])

	messages, ok := body["messages"].([]interface{})
	require.True(t, ok, "messages missing from request body")
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestOpenAIAdapter_StreamChat_ErrorStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: ErrorDetail{Message: "Internal server error", Type: "server_error"},
		})
	}))
	defer server.Close()

	a := NewOpenAIAdapter("test-api-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	stream, err := a.StreamChat(context.Background(), ChatRequest{
		Model:    "gpt-35-turbo-16k",
		Messages: []domain.Message{domain.UserMessage("hi")},
	})
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.Contains(t, err.Error(), "500")
	// The SDK must not retry on its own.
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestOpenAIAdapter_buildParams_SkipsZeroMaxTokens(t *testing.T) {
	a := NewOpenAIAdapter("test-api-key")

	params := a.buildParams(ChatRequest{
		Model:    "gpt-4",
		Messages: []domain.Message{domain.SystemMessage("s"), domain.UserMessage("u")},
	})

	assert.Len(t, params.Messages, 2)
	assert.False(t, params.MaxTokens.Valid())
	assert.True(t, params.Temperature.Valid())
}

func TestOpenAIAdapter_Options(t *testing.T) {
	a := NewOpenAIAdapter("test-api-key", WithBaseURL("https://example.test/v1/"))

	assert.Equal(t, "https://example.test/v1", a.BaseURL())
	assert.Equal(t, "openai", a.Name())

	a = NewOpenAIAdapter("test-api-key", WithBaseURL("   "))
	assert.Equal(t, DefaultOpenAIBaseURL, a.BaseURL())
}

// countingTransport counts the round trips made through it.
type countingTransport struct {
	calls int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.next.RoundTrip(req)
}

func TestOpenAIAdapter_WithHTTPClient(t *testing.T) {
	server := newStreamingServer(t, []string{sseChunk("chatcmpl-1", 0, "ok")}, nil)
	defer server.Close()

	transport := &countingTransport{next: http.DefaultTransport}
	a := NewOpenAIAdapter("test-api-key", WithBaseURL(server.URL), WithHTTPClient(&http.Client{Transport: transport}))

	stream, err := a.StreamChat(context.Background(), ChatRequest{
		Model:    "gpt-35-turbo-16k",
		Messages: []domain.Message{domain.UserMessage("hi")},
	})
	require.NoError(t, err)
	defer stream.Close()

	for stream.Next() {
	}
	require.NoError(t, stream.Err())
	assert.EqualValues(t, 1, atomic.LoadInt32(&transport.calls))
}

func TestOpenAIAdapter_TimeoutBoundsHeadersOnly(t *testing.T) {
	const timeout = 50 * time.Millisecond
	req := ChatRequest{
		Model:    "gpt-35-turbo-16k",
		Messages: []domain.Message{domain.UserMessage("hi")},
	}

	t.Run("slow stream completes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			flusher.Flush()
			for i, text := range []string{"slow ", "reply"} {
				time.Sleep(3 * timeout)
				fmt.Fprintf(w, "data: %s\n\n", sseChunk(fmt.Sprintf("chatcmpl-%d", i), 0, text))
				flusher.Flush()
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))
		defer server.Close()

		a := NewOpenAIAdapter("test-api-key", WithBaseURL(server.URL), WithTimeout(timeout))

		stream, err := a.StreamChat(context.Background(), req)
		require.NoError(t, err)
		defer stream.Close()

		var text string
		for stream.Next() {
			text += stream.Current().Choices[0].Text
		}
		require.NoError(t, stream.Err())
		assert.Equal(t, "slow reply", text)
	})

	t.Run("slow headers fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(4 * timeout)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		a := NewOpenAIAdapter("test-api-key", WithBaseURL(server.URL), WithTimeout(timeout))

		stream, err := a.StreamChat(context.Background(), req)
		require.Error(t, err)
		assert.Nil(t, stream)
	})
}

func TestSliceStream(t *testing.T) {
	boom := fmt.Errorf("boom")
	s := NewSliceStream(Chunk{ID: "a"}, Chunk{ID: "b"}).WithErr(boom)

	require.True(t, s.Next())
	assert.Equal(t, "a", s.Current().ID)
	assert.NoError(t, s.Err())
	require.True(t, s.Next())
	assert.Equal(t, "b", s.Current().ID)
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), boom)

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
}
