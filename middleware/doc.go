// Package middleware exposes HTTP middleware that authenticates requests
// against a goGuard.Engine and transparently renews expired access tokens.
//
// # Guard
//
// [Guard] reads the access token from the Authorization header or the
// access cookie, validates it, and on expiry falls back to the refresh
// cookie. A successful renewal rewrites both cookies before the protected
// handler runs, so the handler's response already carries the new pair.
// Failures either redirect browser clients to a login page with a flash
// cookie, or answer API clients with a fixed status.
//
// The authenticated identity is available to handlers through
// goGuard.IdentityFromContext.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// Engine.Authorize and Engine.RefreshAndAuthorize.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
