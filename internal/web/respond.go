package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/queue"
	"github.com/crowdqueue/crowdqueue/internal/tokens"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// duplicateBody is the 409 payload for duplicate song requests.
type duplicateBody struct {
	Error      string `json:"error"`
	ExistingID string `json:"existingRequestId"`
	IsOwner    bool   `json:"isOwner"`
}

// writeError maps domain errors onto HTTP statuses. Unrecognized errors
// become opaque 500s; the detail goes to the log, not the client.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var dup *queue.DuplicateError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, duplicateBody{
			Error:      "track already requested in this room",
			ExistingID: dup.ExistingID.String(),
			IsOwner:    dup.IsOwner,
		})
	case errors.Is(err, tokens.ErrReauthenticationRequired):
		writeJSON(w, http.StatusUnauthorized, errorBody{"spotify authorization required"})
	case errors.Is(err, tokens.ErrUpstreamUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody{"spotify is unavailable, try again"})
	case errors.Is(err, queue.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{"not allowed"})
	case errors.Is(err, queue.ErrInvalidVote):
		writeJSON(w, http.StatusBadRequest, errorBody{"vote must be -1, 0, or 1"})
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{"not found"})
	default:
		logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{"internal error"})
	}
}
