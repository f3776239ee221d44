package middleware

import (
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
)

// RequireAuth guards a route for any authenticated identity using the
// engine's default failure behavior.
func RequireAuth(engine *goGuard.Engine) func(http.Handler) http.Handler {
	return Guard(engine, Options{})
}

// RequireRoles guards a route for the given roles using the engine's
// default failure behavior.
func RequireRoles(engine *goGuard.Engine, roles ...string) func(http.Handler) http.Handler {
	return Guard(engine, Options{PermittedRoles: roles})
}
