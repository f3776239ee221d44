// Package jwt manages access-token issuance and verification with a process-wide
// HMAC-SHA512 key and strict validation semantics suitable for low-latency
// authorization paths.
//
// The signing key is generated once at startup (see [NewProcessKey]) and held
// only in memory: a restart invalidates every outstanding access token while
// persisted refresh tokens survive. Callers that need tokens to outlive a
// redeploy may supply a persisted key of the same size instead; nothing else
// in the contract changes.
package jwt
