package goGuard

import "context"

// Identity is the authenticated principal attached to a request after a
// successful authorization or refresh.
type Identity struct {
	UserID string
	Role   string
}

// TokenPair carries the signed access token and the opaque refresh token
// issued for one session generation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserRecord is the account record returned by [UserDirectory]. Active
// gates both login and refresh; a deactivated user's session is destroyed
// on the next renewal attempt.
type UserRecord struct {
	UserID       string
	Username     string
	Role         string
	Active       bool
	PasswordHash string
}

// UserDirectory is the interface callers implement to integrate goGuard
// with their user database. It covers credential lookup only; account
// lifecycle stays with the caller.
type UserDirectory interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
}

// PasswordVerifier checks a plaintext password against the stored hash.
// Implementations decide the hashing scheme; goGuard never hashes
// passwords itself.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	Identity Identity
	Pair     TokenPair
}

// RefreshResult is returned by [Engine.Refresh] and
// [Engine.RefreshAndAuthorize]. Rotated is false when the call absorbed a
// rotation a concurrent refresh already performed.
type RefreshResult struct {
	Identity Identity
	Pair     TokenPair
	Rotated  bool
}
