package test

import (
	"context"
	"net/http"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goGuard.New

	var _ *goGuard.Engine
	var _ goGuard.Config
	var _ goGuard.Identity
	var _ goGuard.TokenPair
	var _ goGuard.LoginResult
	var _ goGuard.RefreshResult
	var _ goGuard.UserRecord
	var _ goGuard.UserDirectory
	var _ goGuard.PasswordVerifier
	var _ goGuard.AuditSink

	var _ error = goGuard.ErrTokenInvalid
	var _ error = goGuard.ErrTokenExpired
	var _ error = goGuard.ErrMissingRefreshToken
	var _ error = goGuard.ErrSessionNotFound
	var _ error = goGuard.ErrExpiredRefresh
	var _ error = goGuard.ErrIPMismatch
	var _ error = goGuard.ErrRefreshTimeout
	var _ error = goGuard.ErrRoleMismatch
	var _ error = goGuard.ErrInvalidCredentials

	var _ func(*goGuard.Engine, middleware.Options) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*goGuard.Engine) func(http.Handler) http.Handler = middleware.RequireAuth

	var _ func(*goGuard.Engine, context.Context, string, string) (*goGuard.LoginResult, error) = (*goGuard.Engine).Login
	var _ func(*goGuard.Engine, context.Context, string) (*goGuard.RefreshResult, error) = (*goGuard.Engine).Refresh
	var _ func(*goGuard.Engine, context.Context, string) error = (*goGuard.Engine).Logout
}
