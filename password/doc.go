// Package password provides an optional Argon2id implementation of the
// engine's password verification dependency.
//
// The engine itself never hashes passwords; callers supply any verifier
// they like. This package exists for integrations that do not already have
// a hashing scheme.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive
//     hashes.
//   - Import any other goGuard package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
