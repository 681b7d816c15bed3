package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/queue"
	"github.com/crowdqueue/crowdqueue/internal/tokens"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	logger := log.New(io.Discard)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"reauthentication", tokens.ErrReauthenticationRequired, http.StatusUnauthorized},
		{"wrapped reauthentication", fmt.Errorf("ctx: %w", tokens.ErrReauthenticationRequired), http.StatusUnauthorized},
		{"upstream down", tokens.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"forbidden", queue.ErrForbidden, http.StatusForbidden},
		{"invalid vote", queue.ErrInvalidVote, http.StatusBadRequest},
		{"not found", db.ErrNotFound, http.StatusNotFound},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, logger, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestWriteErrorDuplicatePayload(t *testing.T) {
	existingID := uuid.New()
	w := httptest.NewRecorder()

	writeError(w, log.New(io.Discard), &queue.DuplicateError{ExistingID: existingID, IsOwner: true})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}

	var body duplicateBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.ExistingID != existingID.String() {
		t.Errorf("existingRequestId = %q", body.ExistingID)
	}
	if !body.IsOwner {
		t.Error("isOwner = false")
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, log.New(io.Discard), errors.New("pq: secret table exploded"))

	got := w.Body.String()
	if got == "" || strings.Contains(got, "secret table") {
		t.Errorf("body leaked internals: %q", got)
	}
}
