// Package session manages the cookie-carried guest session. There is
// no server-side session store: the guest's identity, room association,
// and encrypted Spotify credentials all live in the client's cookie jar.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Cookie names. All cookies are httpOnly, SameSite=Lax, Path=/.
const (
	GuestIDCookie  = "guest_id"
	RoomIDCookie   = "guest_room_id"
	RoomCodeCookie = "guest_room_code"
	AccessCookie   = "guest_spotify_access"
	RefreshCookie  = "guest_spotify_refresh"
	ExpiresCookie  = "guest_spotify_expires"
)

// cookieMaxAge is one year. The access token envelope carries its real
// expiry separately in the expires cookie.
const cookieMaxAge = 365 * 24 * time.Hour

// Credential is the encrypted Spotify credential set carried in cookies.
// Only AEAD envelopes cross this boundary; plaintext tokens exist solely
// inside the token lifecycle manager's decrypt step.
type Credential struct {
	AccessEnc  string
	RefreshEnc string
	ExpiresAt  time.Time
}

// Session is the guest's cookie-carried state for one request.
type Session struct {
	GuestID    string
	RoomID     int64 // 0 when not in a room
	RoomCode   string
	Credential *Credential // nil until the guest authorized Spotify
}

// InRoom reports whether the session has a room association.
func (s *Session) InRoom() bool {
	return s.RoomID != 0 && s.RoomCode != ""
}

// Connected reports whether the guest has Spotify credentials.
func (s *Session) Connected() bool {
	return s.Credential != nil
}

// FromRequest reconstructs a session from the request's cookies. Absent
// or unparseable cookies leave the corresponding fields zero; a partial
// credential set (any of the three token cookies missing) is treated as
// no credential at all.
func FromRequest(r *http.Request) *Session {
	s := &Session{
		GuestID:  cookieValue(r, GuestIDCookie),
		RoomCode: cookieValue(r, RoomCodeCookie),
	}

	if v := cookieValue(r, RoomIDCookie); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.RoomID = id
		}
	}

	access := cookieValue(r, AccessCookie)
	refresh := cookieValue(r, RefreshCookie)
	expires := cookieValue(r, ExpiresCookie)
	if access != "" && refresh != "" && expires != "" {
		if ms, err := strconv.ParseInt(expires, 10, 64); err == nil {
			s.Credential = &Credential{
				AccessEnc:  access,
				RefreshEnc: refresh,
				ExpiresAt:  time.UnixMilli(ms),
			}
		}
	}

	return s
}

// Writer sets and clears session cookies on responses.
type Writer struct {
	// Secure marks cookies Secure; enable behind TLS.
	Secure bool
}

// WriteIdentity sets the guest identity and room association cookies.
func (w Writer) WriteIdentity(rw http.ResponseWriter, s *Session) {
	w.set(rw, GuestIDCookie, s.GuestID)
	if s.InRoom() {
		w.set(rw, RoomIDCookie, strconv.FormatInt(s.RoomID, 10))
		w.set(rw, RoomCodeCookie, s.RoomCode)
	}
}

// WriteCredential sets the encrypted credential cookies.
func (w Writer) WriteCredential(rw http.ResponseWriter, c *Credential) {
	w.set(rw, AccessCookie, c.AccessEnc)
	w.set(rw, RefreshCookie, c.RefreshEnc)
	w.set(rw, ExpiresCookie, strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10))
}

// Clear expires every session cookie.
func (w Writer) Clear(rw http.ResponseWriter) {
	for _, name := range []string{
		GuestIDCookie, RoomIDCookie, RoomCodeCookie,
		AccessCookie, RefreshCookie, ExpiresCookie,
	} {
		http.SetCookie(rw, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   w.Secure,
			MaxAge:   -1,
		})
	}
}

// ClearRoom expires only the room association cookies.
func (w Writer) ClearRoom(rw http.ResponseWriter) {
	for _, name := range []string{RoomIDCookie, RoomCodeCookie} {
		http.SetCookie(rw, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   w.Secure,
			MaxAge:   -1,
		})
	}
}

// ClearCredential expires only the credential cookies, keeping the
// guest's identity and room association intact.
func (w Writer) ClearCredential(rw http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie, ExpiresCookie} {
		http.SetCookie(rw, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   w.Secure,
			MaxAge:   -1,
		})
	}
}

func (w Writer) set(rw http.ResponseWriter, name, value string) {
	http.SetCookie(rw, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   w.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cookieMaxAge.Seconds()),
	})
}

// NewGuestID mints a durable pseudonymous guest identifier: 128 bits of
// cryptographic randomness as printable hex.
func NewGuestID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating guest id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
