package chat

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/januslabs/janus/internal/services/chat/models"
)

// Service defines the interface for chat completion operations
type Service interface {
	// Complete runs the conversation to completion and returns a single
	// response.
	Complete(ctx context.Context, req models.ChatCompletionRequest) (*openai.ChatCompletionResponse, error)

	// Stream runs the conversation and emits response chunks as the
	// backend produces text. The stream's channel closes when the reply
	// finishes or fails.
	Stream(ctx context.Context, req models.ChatCompletionRequest) (*Stream, error)
}

// StreamEvent is one frame of a streaming completion. Err is set on the
// final event when the backend failed mid-reply; no events follow it.
type StreamEvent struct {
	Chunk openai.ChatCompletionStreamResponse
	Err   error
}

// Stream carries the chunks of one streaming completion. Every chunk shares
// the stream's completion ID.
type Stream struct {
	ID     string
	Events <-chan StreamEvent
}
