// Package bot implements the chat adapter: it forwards a single message to a
// hosted completion endpoint with bounded retry and returns the generated text
// together with the identifiers needed to continue the conversation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hpn/hpn-g-bot/internal/adapter"
	"github.com/hpn/hpn-g-bot/internal/domain"
)

// EnvAPIKey is the environment variable holding the API credential.
const EnvAPIKey = "OPENAI_API_KEY"

// ErrMissingCredential is returned by New when no API credential is configured.
var ErrMissingCredential = errors.New("unable to initialize the OpenAI API, '" + EnvAPIKey + "' environment variable is not available")

// responsePrefix is stripped once from the start of every response.
const responsePrefix = "with "

// Ids is re-exported so callers need only this package.
type Ids = domain.Ids

// Options holds the transport options of a Bot.
type Options struct {
	// APIKey is the API credential.
	APIKey string

	// APIBaseURL is the completion endpoint base URL.
	APIBaseURL string

	// SystemMessage is sent as the first message of every request.
	SystemMessage string

	// Retries is the maximum number of attempts per chat call.
	Retries int

	// Temperature controls randomness of the completion.
	Temperature float64

	// Debug enables logging of raw responses.
	Debug bool

	// Timeout bounds the wait for response headers of a single attempt. The
	// streamed reply itself may take longer to drain. Zero keeps the
	// transport default.
	Timeout time.Duration
}

// ModelOptions holds the model name and its token limits.
type ModelOptions struct {
	Model       string
	TokenLimits domain.TokenLimits
}

// Bot is the chat adapter. It holds only read-only configuration, so a single
// Bot may serve concurrent Chat calls.
type Bot struct {
	options    Options
	model      ModelOptions
	streamer   adapter.ChatStreamer
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// Option is a functional option for configuring Bot.
type Option func(*Bot)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStreamer replaces the default OpenAI transport.
func WithStreamer(streamer adapter.ChatStreamer) Option {
	return func(b *Bot) {
		b.streamer = streamer
	}
}

// WithBackOff sets the delay policy between attempts. The attempt count is
// always bounded by Options.Retries.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(b *Bot) {
		if newBackOff != nil {
			b.newBackOff = newBackOff
		}
	}
}

// New creates a Bot. It fails when no API credential is available; a Bot is
// never returned half-initialized.
func New(options Options, model ModelOptions, opts ...Option) (*Bot, error) {
	options.APIKey = strings.TrimSpace(options.APIKey)
	if options.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if options.Retries < 1 {
		options.Retries = 1
	}
	if model.Model == "" {
		model.Model = domain.DefaultModel
	}
	if model.TokenLimits == (domain.TokenLimits{}) {
		model.TokenLimits = domain.DefaultTokenLimits(model.Model)
	}
	if options.APIBaseURL == "" {
		options.APIBaseURL = adapter.DefaultOpenAIBaseURL
	}

	b := &Bot{
		options: options,
		model:   model,
		logger:  slog.Default(),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}

	for _, opt := range opts {
		opt(b)
	}

	b.logger.Info("initializing chat adapter",
		slog.String("api_key", options.APIKey),
		slog.String("api_base_url", options.APIBaseURL),
		slog.String("model", model.Model),
		slog.Int("retries", options.Retries),
		slog.Float64("temperature", options.Temperature),
	)

	if b.streamer == nil {
		adapterOpts := []adapter.OpenAIAdapterOption{
			adapter.WithBaseURL(options.APIBaseURL),
			adapter.WithTimeout(options.Timeout),
		}
		if options.Debug {
			adapterOpts = append(adapterOpts, adapter.WithDebugLogger(b.logger))
		}
		b.streamer = adapter.NewOpenAIAdapter(options.APIKey, adapterOpts...)
	}

	return b, nil
}

// Model returns the model name requests are sent with.
func (b *Bot) Model() string {
	return b.model.Model
}

// Chat sends message and returns the response text with the identifiers of
// the exchange. It never fails: every error is logged and reported as an empty
// text with empty identifiers. ids is accepted for continuation but not validated.
func (b *Bot) Chat(ctx context.Context, message string, ids Ids) (text string, newIds Ids) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("failed to chat", slog.Any("error", r))
			text, newIds = "", Ids{}
		}
	}()

	text, newIds, err := b.chat(ctx, message, ids)
	if err != nil {
		b.logger.Warn("failed to chat", slog.String("error", err.Error()))
		return "", Ids{}
	}
	return text, newIds
}

func (b *Bot) chat(ctx context.Context, message string, ids Ids) (string, Ids, error) {
	if message == "" {
		return "", Ids{}, nil
	}

	b.logger.Debug("sending message",
		slog.String("parent_message_id", ids.ParentMessageID),
		slog.String("conversation_id", ids.ConversationID),
	)

	req := adapter.ChatRequest{
		Model: b.model.Model,
		Messages: []domain.Message{
			domain.SystemMessage(b.options.SystemMessage),
			domain.UserMessage(message),
		},
		MaxTokens:   b.model.TokenLimits.ResponseTokens,
		Temperature: b.options.Temperature,
	}

	if estimated, budget := domain.EstimateMessageTokens(req.Messages), b.model.TokenLimits.RequestTokens(); estimated > budget {
		b.logger.Warn("message may exceed the request token budget",
			slog.Int("estimated_tokens", estimated),
			slog.Int("request_tokens", budget),
		)
	}

	start := time.Now()
	stream, attempts, err := b.streamWithRetry(ctx, req)
	if err != nil {
		b.logger.Info("failed to send message to openai",
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()),
		)
	}
	b.logger.Info("openai sendMessage (including retries) response time",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("attempts", attempts),
	)

	if stream == nil {
		b.logger.Warn("openai response is null")
		return "", Ids{}, nil
	}
	defer stream.Close()

	text, newIds, err := drain(stream)
	if err != nil {
		return "", Ids{}, err
	}
	b.logger.Info("openai response", slog.String("response_text", text))

	text = strings.TrimPrefix(text, responsePrefix)

	if b.options.Debug {
		b.logger.Info("openai responses", slog.String("response_text", text))
	}

	return text, newIds, nil
}

// streamWithRetry submits req at most Options.Retries times, sequentially.
// It returns the stream of the first successful attempt and the number of
// attempts made.
func (b *Bot) streamWithRetry(ctx context.Context, req adapter.ChatRequest) (adapter.ChunkStream, int, error) {
	var (
		stream   adapter.ChunkStream
		attempts int
	)

	policy := backoff.WithMaxRetries(
		backoff.WithContext(b.newBackOff(), ctx),
		uint64(b.options.Retries-1),
	)

	err := backoff.Retry(func() error {
		attempts++
		s, err := b.streamer.StreamChat(ctx, req)
		if err != nil {
			b.logger.Debug("attempt failed",
				slog.Int("attempt", attempts),
				slog.String("provider", b.streamer.Name()),
				slog.String("error", err.Error()),
			)
			return err
		}
		stream = s
		return nil
	}, policy)
	if err != nil {
		return nil, attempts, err
	}

	return stream, attempts, nil
}

// drain reads the stream to completion. The text is the concatenation of all
// choice fragments in stream order; the conversation id follows the index of
// the last processed choice and the parent message id the id of the last item.
func drain(stream adapter.ChunkStream) (string, Ids, error) {
	var (
		builder strings.Builder
		ids     Ids
	)

	for stream.Next() {
		item := stream.Current()
		for _, choice := range item.Choices {
			ids.ConversationID = strconv.Itoa(choice.Index)
			builder.WriteString(choice.Text)
		}
		ids.ParentMessageID = item.ID
	}
	if err := stream.Err(); err != nil {
		return "", Ids{}, fmt.Errorf("failed to read response stream: %w", err)
	}

	return builder.String(), ids, nil
}
