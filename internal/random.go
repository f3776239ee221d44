package internal

import (
	"crypto/rand"
	"encoding/base64"
)

// refreshTokenSize is the raw entropy of an opaque refresh token. 32 bytes is
// double the 128-bit floor required for server-side bearer secrets.
const refreshTokenSize = 32

// NewRefreshToken returns an opaque, URL-safe refresh token backed by
// crypto/rand. The token carries no structure; the session store is the only
// party that can resolve it.
func NewRefreshToken() (string, error) {
	var raw [refreshTokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
