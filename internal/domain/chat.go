package domain

import "context"

// ChatModel is a single-shot text completion capability.
type ChatModel interface {
	// Complete sends one system+user prompt pair and returns the full answer.
	// An empty system prompt is allowed.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// StreamingChatModel produces answers as an incremental token stream.
type StreamingChatModel interface {
	// Stream starts a streaming completion. The returned stream must be
	// closed by the caller; closing cancels the upstream request.
	Stream(ctx context.Context, systemPrompt, userPrompt string) (TokenStream, error)
}

// TokenStream is a finite, ordered sequence of answer chunks.
// Recv returns io.EOF after the last chunk. Close releases the upstream
// connection; it is safe to call Close more than once.
type TokenStream interface {
	Recv() (string, error)
	Close()
}
