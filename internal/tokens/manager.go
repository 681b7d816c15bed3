// Package tokens owns the guest Spotify token lifecycle: deciding when
// a cached access token is still usable, refreshing it proactively, and
// keeping only encrypted envelopes outside its own decrypt step.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/crowdqueue/crowdqueue/internal/secretbox"
	"github.com/crowdqueue/crowdqueue/internal/session"
)

// RefreshSkew is how long before expiry a token is considered stale.
// Refresh happens proactively; we never wait for a 401 from Spotify.
const RefreshSkew = 5 * time.Minute

// Sentinel errors.
var (
	// ErrReauthenticationRequired means the session cannot be trusted:
	// the caller must drop local session state and route the guest back
	// through the authorization flow. Never retried with the same secret.
	ErrReauthenticationRequired = errors.New("reauthentication required")

	// ErrUpstreamUnavailable means Spotify failed transiently. Safe for
	// the caller to retry once; there is no built-in retry loop.
	ErrUpstreamUnavailable = errors.New("spotify unavailable")
)

// State classifies a session's credential freshness.
type State int

const (
	// StateUnauthenticated means the session carries no credential.
	StateUnauthenticated State = iota
	// StateFresh means the access token is usable without a network call.
	StateFresh
	// StateStale means the token is within RefreshSkew of expiry (or
	// past it) and must be refreshed before use.
	StateStale
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// StateOf derives the credential state at the given instant.
func StateOf(c *session.Credential, now time.Time) State {
	if c == nil {
		return StateUnauthenticated
	}
	if !now.Before(c.ExpiresAt.Add(-RefreshSkew)) {
		return StateStale
	}
	return StateFresh
}

// Refresher exchanges a refresh token for a new token set.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Manager supplies valid guest access tokens, refreshing as needed.
type Manager struct {
	codec     *secretbox.Codec
	refresher Refresher
	now       func() time.Time
	logger    *log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRefresher replaces the provider-backed refresher.
func WithRefresher(r Refresher) Option {
	return func(m *Manager) { m.refresher = r }
}

// WithClock replaces the manager's clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager that refreshes against the Spotify token
// endpoint with the given confidential-client credentials.
func NewManager(codec *secretbox.Codec, clientID, clientSecret string, logger *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		codec: codec,
		refresher: &oauthRefresher{conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		}},
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetValidAccessToken returns a usable access token for the session. A
// fresh token is a pure lookup plus decrypt, no network. A stale token
// is refreshed, re-encrypted into the session's credential, and updated
// reports true so the boundary re-sets cookies.
//
// Two concurrent requests for the same session can both see a stale
// token and both hit the refresh endpoint. That race is accepted:
// Spotify allows refresh-token reuse within a short window and both
// results are valid. There is no server-side handle to lock on, since
// the session lives entirely in the client's cookies.
func (m *Manager) GetValidAccessToken(ctx context.Context, s *session.Session) (token string, updated bool, err error) {
	switch StateOf(s.Credential, m.now()) {
	case StateUnauthenticated:
		return "", false, fmt.Errorf("%w: no credential in session", ErrReauthenticationRequired)

	case StateFresh:
		access, err := m.codec.Decrypt(s.Credential.AccessEnc)
		if err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
		}
		return access, false, nil

	default: // StateStale
		return m.refresh(ctx, s)
	}
}

func (m *Manager) refresh(ctx context.Context, s *session.Session) (string, bool, error) {
	refreshToken, err := m.codec.Decrypt(s.Credential.RefreshEnc)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
	}

	m.logger.Debug("refreshing guest access token", "guest", s.GuestID)

	tok, err := m.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return "", false, err
	}

	cred, err := m.EncryptToken(tok)
	if err != nil {
		return "", false, err
	}
	// Spotify does not always rotate the refresh token; keep the old
	// envelope when no new one came back.
	if tok.RefreshToken == "" {
		cred.RefreshEnc = s.Credential.RefreshEnc
	}

	s.Credential = cred
	return tok.AccessToken, true, nil
}

// EncryptToken seals a token set into a cookie-ready credential.
func (m *Manager) EncryptToken(tok *oauth2.Token) (*session.Credential, error) {
	accessEnc, err := m.codec.Encrypt(tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}

	cred := &session.Credential{
		AccessEnc: accessEnc,
		ExpiresAt: tok.Expiry,
	}
	if tok.RefreshToken != "" {
		refreshEnc, err := m.codec.Encrypt(tok.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting refresh token: %w", err)
		}
		cred.RefreshEnc = refreshEnc
	}
	return cred, nil
}

// oauthRefresher refreshes through golang.org/x/oauth2, which sends the
// confidential-client credentials per RFC 6749.
type oauthRefresher struct {
	conf *oauth2.Config
}

func (r *oauthRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// The provider saw the request and said no: the refresh
			// token is expired or revoked.
			return nil, fmt.Errorf("%w: refresh rejected: %v", ErrReauthenticationRequired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return tok, nil
}
