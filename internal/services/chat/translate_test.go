package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNewCompletionID(t *testing.T) {
	id := newCompletionID()

	if !strings.HasPrefix(id, "chatcmpl-") {
		t.Errorf("id = %q, want chatcmpl- prefix", id)
	}
	if len(id) != len("chatcmpl-")+32 {
		t.Errorf("len(id) = %d, want %d", len(id), len("chatcmpl-")+32)
	}
	if id == newCompletionID() {
		t.Error("consecutive ids collided")
	}
}

func TestNewCompletion(t *testing.T) {
	resp := newCompletion("chatcmpl-1", 1700000000, "gemini-2.5-pro", "Hello!")

	if resp.Object != "chat.completion" {
		t.Errorf("Object = %q, want chat.completion", resp.Object)
	}
	if resp.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want gemini-2.5-pro", resp.Model)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("len(Choices) = %d, want 1", len(resp.Choices))
	}

	choice := resp.Choices[0]
	if choice.Message.Role != openai.ChatMessageRoleAssistant {
		t.Errorf("Message.Role = %q, want assistant", choice.Message.Role)
	}
	if choice.Message.Content != "Hello!" {
		t.Errorf("Message.Content = %q, want Hello!", choice.Message.Content)
	}
	if choice.FinishReason != openai.FinishReasonStop {
		t.Errorf("FinishReason = %q, want stop", choice.FinishReason)
	}
}

func TestChunkWireFormat(t *testing.T) {
	content := newContentChunk("chatcmpl-1", 1700000000, "unspecified", "He", true)
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content chunk: %v", err)
	}
	if !strings.Contains(string(data), `"finish_reason":null`) {
		t.Errorf("content chunk = %s, want finish_reason null", data)
	}
	if !strings.Contains(string(data), `"role":"assistant"`) {
		t.Errorf("content chunk = %s, want assistant role in delta", data)
	}
	if !strings.Contains(string(data), `"content":"He"`) {
		t.Errorf("content chunk = %s, want content delta", data)
	}

	later := newContentChunk("chatcmpl-1", 1700000000, "unspecified", "llo", false)
	data, err = json.Marshal(later)
	if err != nil {
		t.Fatalf("marshal later chunk: %v", err)
	}
	if strings.Contains(string(data), `"role"`) {
		t.Errorf("later chunk = %s, role must only ride the first chunk", data)
	}

	stop := newStopChunk("chatcmpl-1", 1700000000, "unspecified")
	data, err = json.Marshal(stop)
	if err != nil {
		t.Fatalf("marshal stop chunk: %v", err)
	}
	if !strings.Contains(string(data), `"finish_reason":"stop"`) {
		t.Errorf("stop chunk = %s, want finish_reason stop", data)
	}
	if stop.Object != "chat.completion.chunk" {
		t.Errorf("stop.Object = %q, want chat.completion.chunk", stop.Object)
	}
}
