package health

import (
	"net/http"

	"github.com/januslabs/janus/internal/services/session"
	"github.com/januslabs/janus/pkg/httpext"
)

type status struct {
	Status      string `json:"status"`
	SessionLive bool   `json:"session_live"`
}

// HandleHealth reports process liveness. SessionLive says whether a Gemini
// handle is currently established; false is not a failure, the session
// initializes lazily on first use.
func HandleHealth(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	httpext.WriteJSON(w, http.StatusOK, status{
		Status:      "ok",
		SessionLive: sessionService.Live(),
	})
}
