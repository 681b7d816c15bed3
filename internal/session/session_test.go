package session

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

func requestWithCookies(cookies map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

func TestFromRequestFullSession(t *testing.T) {
	r := requestWithCookies(map[string]string{
		GuestIDCookie:  "abc123",
		RoomIDCookie:   "42",
		RoomCodeCookie: "X7K2PQ",
		AccessCookie:   "env-access",
		RefreshCookie:  "env-refresh",
		ExpiresCookie:  "1700000000000",
	})

	s := FromRequest(r)

	if s.GuestID != "abc123" {
		t.Errorf("GuestID = %q", s.GuestID)
	}
	if s.RoomID != 42 || s.RoomCode != "X7K2PQ" {
		t.Errorf("room = (%d, %q)", s.RoomID, s.RoomCode)
	}
	if !s.InRoom() {
		t.Error("InRoom() = false")
	}
	if !s.Connected() {
		t.Fatal("Connected() = false")
	}
	if got := s.Credential.ExpiresAt; !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("ExpiresAt = %v", got)
	}
}

func TestFromRequestPartialCredentialIsNoCredential(t *testing.T) {
	tests := []struct {
		name    string
		cookies map[string]string
	}{
		{"missing refresh", map[string]string{
			GuestIDCookie: "g", AccessCookie: "a", ExpiresCookie: "1700000000000",
		}},
		{"missing expiry", map[string]string{
			GuestIDCookie: "g", AccessCookie: "a", RefreshCookie: "r",
		}},
		{"garbage expiry", map[string]string{
			GuestIDCookie: "g", AccessCookie: "a", RefreshCookie: "r", ExpiresCookie: "soon",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromRequest(requestWithCookies(tt.cookies))
			if s.Connected() {
				t.Error("partial credential cookies should yield no credential")
			}
		})
	}
}

func TestFromRequestEmpty(t *testing.T) {
	s := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	if s.GuestID != "" || s.InRoom() || s.Connected() {
		t.Errorf("empty request produced non-empty session: %+v", s)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	writer := Writer{}

	writer.WriteIdentity(w, &Session{GuestID: "g1", RoomID: 7, RoomCode: "ABC123"})
	writer.WriteCredential(w, &Credential{
		AccessEnc:  "enc-a",
		RefreshEnc: "enc-r",
		ExpiresAt:  time.UnixMilli(1700000000000),
	})

	// Feed the Set-Cookie headers back through a request.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	s := FromRequest(r)
	if s.GuestID != "g1" || s.RoomID != 7 || s.RoomCode != "ABC123" {
		t.Errorf("identity round trip: %+v", s)
	}
	if !s.Connected() || s.Credential.AccessEnc != "enc-a" || s.Credential.RefreshEnc != "enc-r" {
		t.Errorf("credential round trip: %+v", s.Credential)
	}
}

func TestWriterCookieAttributes(t *testing.T) {
	w := httptest.NewRecorder()
	Writer{Secure: true}.WriteIdentity(w, &Session{GuestID: "g1"})

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no cookies written")
	}
	for _, c := range cookies {
		if !c.HttpOnly {
			t.Errorf("cookie %s not httpOnly", c.Name)
		}
		if !c.Secure {
			t.Errorf("cookie %s not secure", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %s SameSite = %v", c.Name, c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("cookie %s path = %q", c.Name, c.Path)
		}
	}
}

func TestClearExpiresAllCookies(t *testing.T) {
	w := httptest.NewRecorder()
	Writer{}.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 6 {
		t.Fatalf("Clear wrote %d cookies, want 6", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not expired (MaxAge=%d)", c.Name, c.MaxAge)
		}
	}
}

func TestNewGuestID(t *testing.T) {
	hexID := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for range 100 {
		id, err := NewGuestID()
		if err != nil {
			t.Fatalf("NewGuestID() error = %v", err)
		}
		if !hexID.MatchString(id) {
			t.Fatalf("NewGuestID() = %q, want 32 hex chars", id)
		}
		if seen[id] {
			t.Fatalf("NewGuestID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}
