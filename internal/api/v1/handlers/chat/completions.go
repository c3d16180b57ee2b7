package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/internal/services/chat"
	"github.com/januslabs/janus/internal/services/chat/models"
	"github.com/januslabs/janus/internal/services/session"
	"github.com/januslabs/janus/pkg/httpext"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleChatCompletions handles chat completions requests
func HandleChatCompletions(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	var req models.ChatCompletionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	// Validate request against model constraints
	if err := validate.Struct(req); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("model", req.Model).
		Int("message_count", len(req.Messages)).
		Bool("stream", req.Stream).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat completions request")

	if req.Stream {
		streamCompletion(chatService, w, r, req)
		return
	}

	resp, err := chatService.Complete(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, req, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
		return
	}

	log.Ctx(r.Context()).Info().
		Str("completion_id", resp.ID).
		Msg("Chat completion served")
}

// streamCompletion writes the reply as server-sent events. Headers commit
// lazily on the first chunk, so a failure before any output still produces
// a proper JSON error status.
func streamCompletion(chatService chat.Service, w http.ResponseWriter, r *http.Request, req models.ChatCompletionRequest) {
	stream, err := chatService.Stream(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, req, err)
		return
	}

	flushed := false
	for event := range stream.Events {
		if event.Err != nil {
			if !flushed {
				writeServiceError(w, r, req, event.Err)
				return
			}
			// The status line is already on the wire. All that is left
			// is to cut the stream without a terminal sentinel.
			log.Ctx(r.Context()).Error().Err(event.Err).Msg("Backend failed mid-stream, terminating response")
			return
		}

		if !flushed {
			httpext.SetSSEHeaders(w)
			flushed = true
		}
		if err := httpext.WriteSSEChunk(w, event.Chunk); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Client went away mid-stream")
			return
		}
	}

	if !flushed {
		httpext.SetSSEHeaders(w)
	}
	httpext.WriteSSEDone(w)

	log.Ctx(r.Context()).Info().
		Str("completion_id", stream.ID).
		Msg("Chat completion stream served")
}

// writeServiceError maps service failures onto OpenAI-style error bodies.
// Bodies and log fields stay free of credential values.
func writeServiceError(w http.ResponseWriter, r *http.Request, req models.ChatCompletionRequest, err error) {
	log.Ctx(r.Context()).Error().
		Err(err).
		Str("model", req.Model).
		Bool("stream", req.Stream).
		Msg("Failed to process chat completion")

	var (
		unsupported *gemini.UnsupportedModelError
		authErr     *gemini.AuthError
		unavailable *gemini.UnavailableError
	)

	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		httpext.JsonError(w, "Gemini session is not configured. Push cookies to /api/cookies or set SECURE_1PSID and SECURE_1PSIDTS.", httpext.ErrorTypeServiceUnavailable, http.StatusServiceUnavailable)
	case errors.As(err, &unsupported):
		httpext.JsonError(w, unsupported.Error(), httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
	case errors.Is(err, chat.ErrEmptyConversation):
		httpext.JsonError(w, "Messages array cannot be empty", httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
	case errors.As(err, &authErr):
		httpext.JsonError(w, "Gemini session is expired or invalid. Push fresh cookies to /api/cookies.", httpext.ErrorTypeAuthentication, http.StatusUnauthorized)
	case errors.As(err, &unavailable):
		httpext.JsonError(w, "Gemini backend is unavailable", httpext.ErrorTypeBadGateway, http.StatusBadGateway)
	default:
		httpext.JsonError(w, "Failed to process chat completion", httpext.ErrorTypeInternal, http.StatusInternalServerError)
	}
}
