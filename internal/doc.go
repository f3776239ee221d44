// Package internal contains helper utilities that are intentionally private
// to goGuard, including secure random refresh token generation.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGuard API.
//   - Be imported by any package outside the goGuard module.
package internal
