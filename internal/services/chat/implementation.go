package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/internal/infrastructure/metrics"
	"github.com/januslabs/janus/internal/services/chat/models"
	"github.com/januslabs/janus/internal/services/session"
)

type Implementation struct {
	sessions *session.Service
	metrics  *metrics.Service
}

func NewService(sessions *session.Service, metricsService *metrics.Service) (*Implementation, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session service is required")
	}

	return &Implementation{
		sessions: sessions,
		metrics:  metricsService,
	}, nil
}

// prepare resolves the model, acquires the shared session handle and
// flattens the conversation, in that order, so precedence between the
// failure modes stays fixed.
func (s *Implementation) prepare(ctx context.Context, req models.ChatCompletionRequest) (session.Backend, gemini.Model, string, error) {
	model, err := gemini.ResolveModel(req.Model)
	if err != nil {
		return nil, gemini.Model{}, "", err
	}

	handle, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, gemini.Model{}, "", err
	}

	prompt, err := FlattenConversation(req.Messages)
	if err != nil {
		return nil, gemini.Model{}, "", err
	}

	log.Ctx(ctx).Debug().
		Str("model", model.Name).
		Int("prompt_length", len(prompt)).
		Msg("Prepared Gemini prompt")

	return handle, model, prompt, nil
}

func (s *Implementation) Complete(ctx context.Context, req models.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	handle, model, prompt, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := handle.Generate(ctx, prompt, model)
	if err != nil {
		s.recordBackend(model.Name, "complete", err)
		return nil, s.checkAuth(handle, err)
	}

	text, err := collectReply(reply)
	if err != nil {
		s.recordBackend(model.Name, "complete", err)
		return nil, s.checkAuth(handle, err)
	}

	s.recordBackend(model.Name, "complete", nil)
	return newCompletion(newCompletionID(), time.Now().Unix(), req.Model, text), nil
}

func (s *Implementation) Stream(ctx context.Context, req models.ChatCompletionRequest) (*Stream, error) {
	handle, model, prompt, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := handle.GenerateStream(ctx, prompt, model)
	if err != nil {
		s.recordBackend(model.Name, "stream", err)
		return nil, s.checkAuth(handle, err)
	}

	id := newCompletionID()
	created := time.Now().Unix()
	events := make(chan StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		first := true
		send := func(content string) bool {
			ok := emit(StreamEvent{Chunk: newContentChunk(id, created, req.Model, content, first)})
			first = false
			return ok
		}

		switch reply.Kind {
		case gemini.ReplyStreaming:
			for delta := range reply.Deltas {
				if delta.Err != nil {
					s.recordBackend(model.Name, "stream", delta.Err)
					emit(StreamEvent{Err: s.checkAuth(handle, delta.Err)})
					return
				}
				if delta.Content == "" {
					continue
				}
				if !send(delta.Content) {
					return
				}
			}
		default:
			if reply.Text != "" {
				if !send(reply.Text) {
					return
				}
			}
		}

		s.recordBackend(model.Name, "stream", nil)
		emit(StreamEvent{Chunk: newStopChunk(id, created, req.Model)})
	}()

	return &Stream{ID: id, Events: events}, nil
}

// collectReply folds either reply shape into its final text. Streaming
// replies are drained to completion.
func collectReply(reply *gemini.Reply) (string, error) {
	switch reply.Kind {
	case gemini.ReplyStreaming:
		var sb strings.Builder
		for delta := range reply.Deltas {
			if delta.Err != nil {
				return "", delta.Err
			}
			sb.WriteString(delta.Content)
		}
		return sb.String(), nil
	default:
		return reply.Text, nil
	}
}

// checkAuth invalidates the session when the backend rejected it, so the
// next request starts a fresh handshake. The error passes through
// unchanged either way.
func (s *Implementation) checkAuth(handle session.Backend, err error) error {
	var authErr *gemini.AuthError
	if errors.As(err, &authErr) {
		s.sessions.Invalidate(handle)
	}
	return err
}

func (s *Implementation) recordBackend(model, mode string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordBackendRequest(model, mode, status)
}
