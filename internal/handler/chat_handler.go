// Package handler provides HTTP handlers for the chat gateway.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-g-bot/internal/adapter"
	"github.com/hpn/hpn-g-bot/internal/domain"
)

// Chatter is the chat adapter served over HTTP.
type Chatter interface {
	Chat(ctx context.Context, message string, ids domain.Ids) (string, domain.Ids)
	Model() string
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message         string `json:"message"`
	ParentMessageID string `json:"parent_message_id,omitempty"`
	ConversationID  string `json:"conversation_id,omitempty"`
}

// ChatResponse is the body returned by POST /v1/chat.
type ChatResponse struct {
	Text            string `json:"text"`
	ParentMessageID string `json:"parent_message_id"`
	ConversationID  string `json:"conversation_id"`
}

// ChatHandler exposes a Chatter over HTTP.
type ChatHandler struct {
	chatter Chatter
	logger  *slog.Logger
}

// ChatHandlerOption is a functional option for configuring ChatHandler.
type ChatHandlerOption func(*ChatHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ChatHandlerOption {
	return func(h *ChatHandler) {
		h.logger = logger
	}
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatter Chatter, opts ...ChatHandlerOption) *ChatHandler {
	h := &ChatHandler{
		chatter: chatter,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleChat handles POST /v1/chat.
// A failed exchange is not an HTTP error: it is answered with empty text.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	text, ids := h.chatter.Chat(c.Request.Context(), req.Message, domain.Ids{
		ParentMessageID: req.ParentMessageID,
		ConversationID:  req.ConversationID,
	})

	if text == "" {
		h.logger.Info("chat produced no text",
			slog.String("request_id", c.GetString(requestIDKey)),
		)
	}
	c.Set("reply_chars", len(text))

	c.JSON(http.StatusOK, ChatResponse{
		Text:            text,
		ParentMessageID: ids.ParentMessageID,
		ConversationID:  ids.ConversationID,
	})
}

// HandleHealth handles GET /health.
func (h *ChatHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model":  h.chatter.Model(),
	})
}

// sendError sends an error response in OpenAI-compatible format.
func (h *ChatHandler) sendError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, adapter.ErrorResponse{
		Error: adapter.ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}

// Register mounts the handler's routes on r.
func (h *ChatHandler) Register(r gin.IRoutes) {
	r.POST("/v1/chat", h.HandleChat)
	r.GET("/health", h.HandleHealth)
}
