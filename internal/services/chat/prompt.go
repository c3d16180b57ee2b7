package chat

import (
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyConversation is returned when a request carries no messages.
var ErrEmptyConversation = errors.New("messages array is empty")

const (
	labelSystem    = "System Note"
	labelUser      = "User"
	labelAssistant = "Assistant"
)

// FlattenConversation folds an OpenAI message list into the single prompt
// string a Gemini web session accepts. Every message survives in order as a
// labeled paragraph, so the stateless backend sees the whole conversation
// on each request.
func FlattenConversation(messages []openai.ChatCompletionMessage) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, label(msg.Role)+": "+messageText(msg))
	}
	return strings.Join(parts, "\n\n"), nil
}

func label(role string) string {
	switch role {
	case openai.ChatMessageRoleSystem:
		return labelSystem
	case openai.ChatMessageRoleUser, "":
		return labelUser
	case openai.ChatMessageRoleAssistant:
		return labelAssistant
	default:
		return capitalize(role)
	}
}

// messageText extracts the text of a message whether it uses the plain or
// the multipart content shape. Non-text parts contribute nothing.
func messageText(msg openai.ChatCompletionMessage) string {
	if msg.Content != "" || len(msg.MultiContent) == 0 {
		return msg.Content
	}

	var sb strings.Builder
	for _, part := range msg.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
