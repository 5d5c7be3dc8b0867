package game

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

var ErrInvalidRoomID = errors.New("invalid roomId (use letters/numbers/_/- up to 32 chars)")

var roomIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,32}$`)

// SanitizeRoomID trims and validates a client-supplied room id.
func SanitizeRoomID(roomID string) (string, error) {
	trimmed := strings.TrimSpace(roomID)
	if !roomIDPattern.MatchString(trimmed) {
		return "", ErrInvalidRoomID
	}
	return trimmed, nil
}

// SanitizeName trims a display name to 24 characters, falling back to
// "Player" when nothing usable remains. Never fails.
func SanitizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > 24 {
		trimmed = trimmed[:24]
	}
	if trimmed == "" {
		return "Player"
	}
	return trimmed
}

// RandomColor picks a light hex color so player sprites stay readable
// against the dark tile palette.
func RandomColor(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteByte('#')
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%02x", 160+rng.Intn(96))
	}
	return b.String()
}
