package chat

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// newCompletionID mints an OpenAI-style completion id. A streaming response
// reuses one id across all of its chunks.
func newCompletionID() string {
	return fmt.Sprintf("chatcmpl-%x", [16]byte(uuid.New()))
}

// newCompletion shapes a full reply as a single-choice chat completion.
func newCompletion(id string, created int64, model, content string) *openai.ChatCompletionResponse {
	return &openai.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []openai.ChatCompletionChoice{{
			Index: 0,
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

// newContentChunk shapes one streamed delta. The first chunk of a stream
// carries the assistant role, matching OpenAI's framing.
func newContentChunk(id string, created int64, model, content string, withRole bool) openai.ChatCompletionStreamResponse {
	delta := openai.ChatCompletionStreamChoiceDelta{Content: content}
	if withRole {
		delta.Role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionStreamResponse{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []openai.ChatCompletionStreamChoice{{
			Index: 0,
			Delta: delta,
		}},
	}
}

// newStopChunk terminates a stream with an empty delta and a stop reason.
// Even a reply with no text ends with one, so clients always see a frame.
func newStopChunk(id string, created int64, model string) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []openai.ChatCompletionStreamChoice{{
			Index:        0,
			Delta:        openai.ChatCompletionStreamChoiceDelta{},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}
