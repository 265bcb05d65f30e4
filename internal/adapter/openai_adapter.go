// Package adapter provides implementations for external AI provider integrations.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/hpn/hpn-g-bot/internal/domain"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the default wait for response headers.
	DefaultTimeout = 60 * time.Second
)

// OpenAIAdapter implements ChatStreamer for OpenAI-compatible chat completion APIs.
type OpenAIAdapter struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	client     openai.Client
}

// OpenAIAdapterOption is a functional option for configuring OpenAIAdapter.
type OpenAIAdapterOption func(*OpenAIAdapter)

// WithBaseURL sets a custom base URL for the completion API.
func WithBaseURL(url string) OpenAIAdapterOption {
	return func(o *OpenAIAdapter) {
		if url = strings.TrimSpace(url); url != "" {
			o.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The client is used as given:
// WithTimeout does not apply to it.
func WithHTTPClient(client *http.Client) OpenAIAdapterOption {
	return func(o *OpenAIAdapter) {
		o.httpClient = client
	}
}

// WithTimeout bounds the wait for the response headers of a request. Reading
// the streamed body is not bounded, so a long completion is never cut off
// mid-stream; cancel the request context to stop it.
func WithTimeout(timeout time.Duration) OpenAIAdapterOption {
	return func(o *OpenAIAdapter) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithDebugLogger logs every HTTP round trip made by the SDK.
func WithDebugLogger(logger *slog.Logger) OpenAIAdapterOption {
	return func(o *OpenAIAdapter) {
		o.logger = logger
	}
}

// NewOpenAIAdapter creates a new OpenAIAdapter with the given API key.
func NewOpenAIAdapter(apiKey string, opts ...OpenAIAdapterOption) *OpenAIAdapter {
	o := &OpenAIAdapter{
		apiKey:  apiKey,
		baseURL: DefaultOpenAIBaseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = o.timeout
		o.httpClient = &http.Client{Transport: transport}
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(o.baseURL),
		option.WithHTTPClient(o.httpClient),
		// Retrying belongs to the caller.
		option.WithMaxRetries(0),
	}
	if o.logger != nil {
		clientOpts = append(clientOpts, option.WithMiddleware(o.logRoundTrip))
	}
	o.client = openai.NewClient(clientOpts...)

	return o
}

// Name returns the provider identifier.
func (o *OpenAIAdapter) Name() string {
	return "openai"
}

// BaseURL returns the endpoint requests are sent to.
func (o *OpenAIAdapter) BaseURL() string {
	return o.baseURL
}

// StreamChat opens a streamed chat completion.
// Failures reported before the first event (connection errors, 4xx/5xx status)
// are returned as errors; failures while reading events surface from Err.
func (o *OpenAIAdapter) StreamChat(ctx context.Context, req ChatRequest) (ChunkStream, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, o.buildParams(req))
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", o.Name(), err)
	}
	return &openAIStream{stream: stream}, nil
}

// buildParams converts a ChatRequest to the SDK request parameters.
func (o *OpenAIAdapter) buildParams(req ChatRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case domain.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

// logRoundTrip is an SDK middleware that records request latency and status.
func (o *OpenAIAdapter) logRoundTrip(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	start := time.Now()
	resp, err := next(req)

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Duration("latency", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	} else {
		attrs = append(attrs, slog.Int("status", resp.StatusCode))
	}
	o.logger.Debug("completion round trip", attrs...)

	return resp, err
}

// openAIStream adapts the SDK's SSE stream to ChunkStream.
type openAIStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openAIStream) Next() bool {
	return s.stream.Next()
}

func (s *openAIStream) Current() Chunk {
	raw := s.stream.Current()
	chunk := Chunk{
		ID:      raw.ID,
		Choices: make([]Choice, 0, len(raw.Choices)),
	}
	for _, c := range raw.Choices {
		chunk.Choices = append(chunk.Choices, Choice{
			Index: int(c.Index),
			Text:  c.Delta.Content,
		})
	}
	return chunk
}

func (s *openAIStream) Err() error {
	return s.stream.Err()
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
