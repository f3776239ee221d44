package goGuard

import "errors"

var (
	// ErrTokenInvalid is returned when an access token fails signature or
	// structural validation.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when an access token is well formed but past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrMissingRefreshToken is returned when renewal is attempted without a
	// refresh token.
	ErrMissingRefreshToken = errors.New("missing refresh token")
	// ErrSessionNotFound is returned when no live session matches the
	// presented refresh token: never issued, superseded beyond the grace
	// window, or deleted.
	ErrSessionNotFound = errors.New("session not found")
	// ErrExpiredRefresh is returned when the session's own refresh lifetime
	// has lapsed.
	ErrExpiredRefresh = errors.New("refresh token expired")
	// ErrIPMismatch is returned when a request presents a session from a
	// different IP than the one it was bound to.
	ErrIPMismatch = errors.New("client ip mismatch")
	// ErrRefreshTimeout is returned when a refresh could not acquire its
	// shard lock in time.
	ErrRefreshTimeout = errors.New("refresh lock timeout")
	// ErrRoleMismatch is returned when a valid identity lacks a permitted role.
	ErrRoleMismatch = errors.New("role not permitted")
	// ErrUserNotFound is returned when the user directory has no such user.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when the user exists but is deactivated.
	ErrUserInactive = errors.New("user inactive")
	// ErrInvalidCredentials is returned on password verification failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
