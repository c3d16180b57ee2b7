package httpext

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error type identifiers matching the upstream chat-completions API.
const (
	ErrorTypeInvalidRequest     = "invalid_request_error"
	ErrorTypeAuthentication     = "authentication_error"
	ErrorTypeRateLimit          = "rate_limit_error"
	ErrorTypeBadGateway         = "bad_gateway"
	ErrorTypeServiceUnavailable = "service_unavailable"
	ErrorTypeInternal           = "internal_error"
)

// ErrorDetail carries the message and machine-readable type of one error.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse is the standardised JSON error envelope:
// {"error": {"message": ..., "type": ...}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JsonError writes a JSON error response with the specified type and status code
func JsonError(w http.ResponseWriter, message, errType string, code int) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
		// Fallback to writing JSON body as plain text if JSON encoding fails
		http.Error(w, `{"error":{"message":"Internal Server Error","type":"internal_error"}}`, http.StatusInternalServerError)
		return
	}
}

// WriteJSON writes v as a JSON response body with the given status code
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
