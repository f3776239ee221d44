// Package session provides Redis-backed persistence for login sessions and
// their rotating refresh tokens.
//
// # Layout
//
// Each session is stored as a JSON record keyed by session ID, with three
// index keys resolving the current refresh token, the immediately superseded
// refresh token, and the owning user ID back to that session. All keys share
// the refresh TTL, so Redis expiry reaps a session and its indexes together;
// no background sweep is needed.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model.
// It does NOT interpret access tokens or decide whether a rotation is
// permitted — IP binding, expiry and grace-window policy belong to the
// refresh coordinator, which is the only caller of [Store.Rotate] and always
// holds the per-token shard lock while calling it.
//
// # What this package must NOT do
//
//   - Import goGuard, jwt, or refresh (no upward imports).
//   - Serialize concurrent rotations itself; locking lives in refresh.
package session
