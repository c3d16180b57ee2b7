package models

import (
	"net/http"
	"time"

	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/pkg/httpext"
)

// createdAt is fixed at process start. The catalog is compiled in, so there
// is no more meaningful timestamp to report.
var createdAt = time.Now().Unix()

type ModelCard struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelCard `json:"data"`
}

// HandleListModels reports the model catalog in OpenAI list format, which
// lets client libraries discover what this proxy serves.
func HandleListModels(w http.ResponseWriter, r *http.Request) {
	catalog := gemini.Models()

	list := ModelList{
		Object: "list",
		Data:   make([]ModelCard, 0, len(catalog)),
	}
	for _, model := range catalog {
		list.Data = append(list.Data, ModelCard{
			ID:      model.Name,
			Object:  "model",
			Created: createdAt,
			OwnedBy: "google",
		})
	}

	httpext.WriteJSON(w, http.StatusOK, list)
}
