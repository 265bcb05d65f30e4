// Package adapter provides implementations for external AI provider integrations.
package adapter

import "github.com/hpn/hpn-g-bot/internal/domain"

// ChatRequest is the single call shape sent to the completion endpoint.
type ChatRequest struct {
	// Model specifies which model to use (e.g., "gpt-35-turbo-16k").
	Model string `json:"model"`

	// Messages is the ordered system+user message list.
	Messages []domain.Message `json:"messages"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0).
	Temperature float64 `json:"temperature"`
}

// Chunk is one item of a streamed completion.
type Chunk struct {
	// ID identifies the completion this item belongs to.
	ID string `json:"id"`

	// Choices holds the text fragments carried by this item.
	Choices []Choice `json:"choices"`
}

// Choice is a single completion choice within a streamed item.
type Choice struct {
	// Index is the position of this choice in the list.
	Index int `json:"index"`

	// Text is the message-text fragment.
	Text string `json:"text"`
}

// ErrorResponse represents an error envelope in the OpenAI-compatible format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error details.
type ErrorDetail struct {
	// Message is the human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error (e.g., "invalid_request_error").
	Type string `json:"type"`

	// Param is the parameter that caused the error. Optional.
	Param *string `json:"param"`

	// Code is the error code. Optional.
	Code *string `json:"code"`
}
