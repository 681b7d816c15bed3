package oauthstate

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		guestID  string
		roomCode string
	}{
		{"typical", "a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8", "X7K2PQ"},
		{"lowercase code", "deadbeefdeadbeefdeadbeefdeadbeef", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Encode(tt.guestID, tt.roomCode)

			p, err := Decode(state)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if p.GuestID != tt.guestID {
				t.Errorf("GuestID = %q, want %q", p.GuestID, tt.guestID)
			}
			if p.RoomCode != tt.roomCode {
				t.Errorf("RoomCode = %q, want %q", p.RoomCode, tt.roomCode)
			}
			if p.IssuedAt == 0 {
				t.Error("IssuedAt not set")
			}
		})
	}
}

func TestEncodingsOfSamePayloadDiffer(t *testing.T) {
	// The embedded timestamp defeats caching of the redirect chain, so
	// back-to-back encodings should rarely collide. Millisecond clocks
	// can tick the same twice, so allow a retry.
	a := Encode("guest", "CODE")
	for range 5 {
		if Encode("guest", "CODE") != a {
			return
		}
	}
	t.Error("repeated encodings of the same payload never differed")
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		state string
	}{
		{"empty", ""},
		{"not base64", "%%%%"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"missing guest", base64.StdEncoding.EncodeToString([]byte(`{"roomCode":"X","ts":1}`))},
		{"missing room", base64.StdEncoding.EncodeToString([]byte(`{"guestId":"g","ts":1}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.state); !errors.Is(err, ErrInvalidState) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidState", tt.state, err)
			}
		})
	}
}
