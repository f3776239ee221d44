// Package goGuard provides a session-renewal authentication engine with
// signed JWT access tokens, rotating opaque refresh tokens, and Redis-backed
// sessions bound to the client IP that opened them.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. Refresh attempts on the same token are serialized through
// hashed shard locks so that concurrent renewals of one session produce
// exactly one rotation, with every caller receiving the identical token
// pair.
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Identity, TokenPair, MetricsSnapshot). Token signing,
// session persistence, and refresh coordination live in the jwt, session,
// and refresh sub-packages; HTTP integration lives in middleware.
//
// # What this package must NOT do
//
//   - Expose Redis clients or session storage details in its public API.
//   - Perform I/O during construction (Builder is allocation-only until
//     Build, which only wires dependencies).
//   - Import any sub-package that re-imports goGuard.
package goGuard
