package session

import "time"

// Session is the durable record of one active login. At most one Session
// exists per user; RefreshToken is unique across all sessions.
//
// AccessToken holds the most recently issued access token so that the loser
// of a duplicate-refresh race can be handed the identical, already-issued
// pair instead of triggering a second rotation.
type Session struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Role            string `json:"role"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	OldRefreshToken string `json:"old_refresh_token,omitempty"`

	// Unix milliseconds.
	RefreshExpiresAt int64 `json:"refresh_expires_at"`
	CreatedAt        int64 `json:"created_at"`

	ClientIP string `json:"client_ip,omitempty"`
}

// RefreshExpiry returns RefreshExpiresAt as a time.Time.
func (s *Session) RefreshExpiry() time.Time {
	return time.UnixMilli(s.RefreshExpiresAt)
}

// Expired reports whether the refresh token's own TTL has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.RefreshExpiry())
}
