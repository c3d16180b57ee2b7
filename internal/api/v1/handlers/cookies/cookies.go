package cookies

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/internal/services/session"
	"github.com/januslabs/janus/pkg/httpext"
)

// UpdateRequest carries the Google cookie pair. Pointers distinguish a
// missing field from an empty one; both are rejected.
type UpdateRequest struct {
	PSID   *string `json:"__Secure-1PSID"`
	PSIDTS *string `json:"__Secure-1PSIDTS"`
}

type updateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleUpdateCookies swaps in a fresh cookie pair at runtime and rebuilds
// the Gemini session with it, reporting whether the new cookies work.
func HandleUpdateCookies(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Client sent malformed cookie update")
		httpext.JsonError(w, "Invalid request format", httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	if req.PSID == nil || *req.PSID == "" || req.PSIDTS == nil || *req.PSIDTS == "" {
		// Log presence only, never the values themselves.
		log.Ctx(r.Context()).Warn().
			Bool("has_psid", req.PSID != nil && *req.PSID != "").
			Bool("has_psidts", req.PSIDTS != nil && *req.PSIDTS != "").
			Msg("Cookie update missing required fields")
		httpext.JsonError(w, "Both __Secure-1PSID and __Secure-1PSIDTS are required", httpext.ErrorTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	creds := gemini.Credentials{PSID: *req.PSID, PSIDTS: *req.PSIDTS}
	if err := sessionService.UpdateCredentials(r.Context(), creds); err != nil {
		var authErr *gemini.AuthError
		if errors.As(err, &authErr) {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Pushed cookies were rejected by the backend")
			httpext.JsonError(w, "Cookies were rejected by the backend", httpext.ErrorTypeAuthentication, http.StatusUnauthorized)
			return
		}

		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to update cookies")
		httpext.JsonError(w, "Failed to update cookies", httpext.ErrorTypeInternal, http.StatusInternalServerError)
		return
	}

	log.Ctx(r.Context()).Info().Msg("Session cookies updated")
	httpext.WriteJSON(w, http.StatusOK, updateResponse{
		Status:  "success",
		Message: "Cookies updated successfully",
	})
}
