package tokens

import (
	"context"
	"fmt"
	"sync"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AppTokenSource hands out the app-level client-credentials token used
// for unauthenticated browsing (search, public playlists). The token is
// cached until near expiry; the mutex keeps a cold start from firing a
// burst of duplicate grants.
type AppTokenSource struct {
	mu  sync.Mutex
	src oauth2.TokenSource
}

// NewAppTokenSource creates a cached client-credentials token source.
func NewAppTokenSource(clientID, clientSecret string) *AppTokenSource {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return &AppTokenSource{src: conf.TokenSource(context.Background())}
}

// Token implements oauth2.TokenSource.
func (a *AppTokenSource) Token() (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tok, err := a.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: app token grant: %v", ErrUpstreamUnavailable, err)
	}
	return tok, nil
}
