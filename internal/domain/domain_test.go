package domain

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"   ", 0},
		{"hello", 1},
		{"hello world", 2},
		{"func main() { return }", 3},
		{"one two three four five six seven eight nine ten", 13},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EstimateTokens(tt.input); got != tt.expected {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEstimateMessageTokens(t *testing.T) {
	messages := []Message{SystemMessage("be brief"), UserMessage("review this diff")}

	if got := EstimateMessageTokens(messages); got != 2+3 {
		t.Errorf("EstimateMessageTokens() = %d, want 5", got)
	}
}

func TestTokenLimits(t *testing.T) {
	limits := DefaultTokenLimits(DefaultModel)
	if limits.MaxTokens != 16300 || limits.ResponseTokens != 3000 {
		t.Errorf("DefaultTokenLimits(%q) = %+v", DefaultModel, limits)
	}
	if limits.RequestTokens() != 13300 {
		t.Errorf("RequestTokens() = %d, want 13300", limits.RequestTokens())
	}

	if got := DefaultTokenLimits("unknown-model"); got.MaxTokens != 4000 {
		t.Errorf("DefaultTokenLimits(unknown) = %+v, want 4k defaults", got)
	}
	if got := (TokenLimits{MaxTokens: 10, ResponseTokens: 20}).RequestTokens(); got != 0 {
		t.Errorf("RequestTokens() = %d, want 0 when response exceeds max", got)
	}
}

func TestIds_IsZero(t *testing.T) {
	if !(Ids{}).IsZero() {
		t.Error("zero Ids should report IsZero")
	}
	if (Ids{ConversationID: "0"}).IsZero() {
		t.Error("Ids with a conversation id should not report IsZero")
	}
}
