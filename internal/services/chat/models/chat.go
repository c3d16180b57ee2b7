package models

import (
	"github.com/sashabaranov/go-openai"
)

// ChatCompletionRequest is the accepted subset of the OpenAI chat completion
// request. Messages reuse the official wire types so multipart content
// parses without local mirroring.
//
// The sampling knobs below are accepted for client compatibility and
// ignored: a Gemini web session does not expose them.
type ChatCompletionRequest struct {
	Model    string                         `json:"model" validate:"required"`
	Messages []openai.ChatCompletionMessage `json:"messages"`
	Stream   bool                           `json:"stream,omitempty"`

	MaxTokens        int                   `json:"max_tokens,omitempty"`
	Temperature      float32               `json:"temperature,omitempty"`
	TopP             float32               `json:"top_p,omitempty"`
	N                int                   `json:"n,omitempty"`
	Stop             []string              `json:"stop,omitempty"`
	PresencePenalty  float32               `json:"presence_penalty,omitempty"`
	FrequencyPenalty float32               `json:"frequency_penalty,omitempty"`
	User             string                `json:"user,omitempty"`
	StreamOptions    *openai.StreamOptions `json:"stream_options,omitempty"`
}
