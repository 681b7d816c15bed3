package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/harvest"
	"github.com/crowdqueue/crowdqueue/internal/metrics"
	"github.com/crowdqueue/crowdqueue/internal/queue"
	"github.com/crowdqueue/crowdqueue/internal/rooms"
	"github.com/crowdqueue/crowdqueue/internal/session"
	"github.com/crowdqueue/crowdqueue/internal/spotify"
	"github.com/crowdqueue/crowdqueue/internal/tokens"
)

// Handlers holds the services behind the HTTP surface.
type Handlers struct {
	auth     *spotifyauth.Authenticator
	baseURL  string
	tokens   *tokens.Manager
	appToken oauth2.TokenSource
	writer   session.Writer
	resolver *session.Resolver
	rooms    *rooms.Service
	queue    *queue.Service
	harvest  *harvest.Service
	database *db.DB
	metrics  *metrics.Collector
	logger   *log.Logger
}

// ensureGuest resolves the request's session, minting a guest identity
// when needed, and persists any repair back to the cookie jar.
func (h *Handlers) ensureGuest(w http.ResponseWriter, r *http.Request, roomCodeHint string) (*session.Session, error) {
	s := session.FromRequest(r)
	isNew, err := h.resolver.Resolve(r.Context(), s, roomCodeHint)
	if err != nil {
		return nil, err
	}
	if isNew || (s.InRoom() && roomCodeHint != "") {
		h.writer.WriteIdentity(w, s)
	}
	return s, nil
}

// guestClient builds a Spotify client from the session's credential,
// refreshing the access token first when it is stale. A refreshed
// credential is re-set on the response so the client's cookies follow.
func (h *Handlers) guestClient(ctx context.Context, w http.ResponseWriter, s *session.Session) (*spotify.Client, error) {
	token, updated, err := h.tokens.GetValidAccessToken(ctx, s)
	if updated || err != nil {
		h.metrics.RecordTokenRefresh(err == nil)
	}
	if err != nil {
		return nil, err
	}
	if updated {
		h.writer.WriteCredential(w, s.Credential)
	}
	return spotify.NewWithToken(ctx, token), nil
}

// appClient builds a Spotify client from the app-level token, for
// reads that need no guest authorization.
func (h *Handlers) appClient(ctx context.Context) *spotify.Client {
	return spotify.NewWithTokenSource(ctx, h.appToken)
}
