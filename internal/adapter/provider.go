// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to abstract provider-specific APIs behind a common interface.
package adapter

import (
	"context"
)

// ChatStreamer defines the interface for streaming chat completion providers.
type ChatStreamer interface {
	// StreamChat submits a chat completion request and returns the response stream.
	// An error is returned when the request could not be delivered or was rejected
	// before the first streamed item; such errors are safe to retry.
	StreamChat(ctx context.Context, req ChatRequest) (ChunkStream, error)

	// Name returns the provider's identifier string.
	Name() string
}

// ChunkStream iterates the items of a streamed completion.
type ChunkStream interface {
	// Next advances to the next item, returning false at the end or on error.
	Next() bool

	// Current returns the item Next advanced to.
	Current() Chunk

	// Err returns the first error met while streaming, if any.
	Err() error

	// Close releases the underlying connection.
	Close() error
}
