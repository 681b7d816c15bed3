// Package oauthstate encodes the guest context that must survive the
// redirect round-trip to the Spotify authorization server.
package oauthstate

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned when a state value does not decode to a
// well-formed payload. State arrives back on a redirect from the
// outside world, so decode failures are attacker-controlled input.
var ErrInvalidState = errors.New("invalid oauth state")

// Payload is the guest context carried through the authorization redirect.
type Payload struct {
	GuestID  string `json:"guestId"`
	RoomCode string `json:"roomCode"`
	// IssuedAt (epoch ms) makes two encodings of the same logical payload
	// differ so intermediaries cannot serve a cached redirect. It is not
	// a security control: nothing verifies that this process issued the
	// state. Callers must still validate the room against the store.
	IssuedAt int64 `json:"ts"`
}

// Encode serializes the payload as base64(JSON) with a fresh timestamp.
func Encode(guestID, roomCode string) string {
	p := Payload{
		GuestID:  guestID,
		RoomCode: roomCode,
		IssuedAt: time.Now().UnixMilli(),
	}
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a state value. It validates shape only; the room code
// must be resolved against the store before the payload is trusted.
func Decode(state string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if p.GuestID == "" || p.RoomCode == "" {
		return Payload{}, fmt.Errorf("%w: missing guest or room", ErrInvalidState)
	}

	return p, nil
}
