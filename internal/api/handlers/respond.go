package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sdelacruz/yourplaces-be/internal/httperr"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError converts a service error into the uniform {"message": ...}
// response. The underlying cause is logged, never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	he := httperr.From(err)
	if he.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}
	writeJSON(w, he.Status, map[string]string{"message": he.Message})
}
