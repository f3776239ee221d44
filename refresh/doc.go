// Package refresh serializes concurrent refresh attempts and applies the
// token rotation policy.
//
// # Coordination model
//
// Refresh tokens hash onto a fixed set of lock shards. Two requests carrying
// the same token always land on the same shard, so at most one of them
// rotates; the loser re-reads the session and receives the pair the winner
// already produced. Requests carrying unrelated tokens almost always land on
// different shards and proceed in parallel.
//
// # Grace window
//
// A rotated-out token stays accepted for a short window after rotation. A
// client whose duplicate request arrives after the winner committed gets the
// current pair back instead of an error. Tokens older than one generation
// are never accepted.
//
// # Architecture boundaries
//
// This package owns locking, grace arithmetic, and IP binding checks. Token
// signing and session persistence belong to the jwt and session packages.
package refresh
