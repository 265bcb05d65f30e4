// Package domain contains the core business entities and value objects.
package domain

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gpt-35-turbo-16k"

// TokenLimits bounds the size of a request and its completion.
type TokenLimits struct {
	// MaxTokens is the model's total context window.
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens"`

	// ResponseTokens is the maximum number of tokens the model may generate.
	ResponseTokens int `json:"response_tokens" mapstructure:"response_tokens"`
}

// RequestTokens returns the budget left for the prompt.
func (t TokenLimits) RequestTokens() int {
	if n := t.MaxTokens - t.ResponseTokens; n > 0 {
		return n
	}
	return 0
}

// DefaultTokenLimits returns the limits for a known model name.
// Unknown models get the 4k defaults.
func DefaultTokenLimits(model string) TokenLimits {
	switch model {
	case "gpt-35-turbo-16k", "gpt-3.5-turbo-16k":
		return TokenLimits{MaxTokens: 16300, ResponseTokens: 3000}
	case "gpt-4":
		return TokenLimits{MaxTokens: 8000, ResponseTokens: 2000}
	case "gpt-4-32k":
		return TokenLimits{MaxTokens: 32600, ResponseTokens: 4000}
	default:
		return TokenLimits{MaxTokens: 4000, ResponseTokens: 1000}
	}
}
