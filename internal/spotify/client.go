// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewWithToken creates a wrapper authenticated with a bearer access
// token, as recovered from a guest session.
func NewWithToken(ctx context.Context, accessToken string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return New(spotify.New(oauth2.NewClient(ctx, src)))
}

// NewWithTokenSource creates a wrapper backed by a reusable token
// source, such as the app-level client-credentials source.
func NewWithTokenSource(ctx context.Context, src oauth2.TokenSource) *Client {
	return New(spotify.New(oauth2.NewClient(ctx, src)))
}

// Profile returns the authenticated user's public profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	p := &Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
	}
	if p.DisplayName == "" {
		p.DisplayName = user.ID
	}
	if len(user.Images) > 0 {
		p.AvatarURL = user.Images[0].URL
	}
	return p, nil
}
