package goGuard

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/refresh"
	"github.com/MrEthical07/goGuard/session"
)

// Engine is the authentication core. Construct it through [Builder.Build];
// all methods are safe for concurrent use afterwards.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	sessionStore *session.Store
	coordinator  *refresh.Coordinator
	directory    UserDirectory
	verifier     PasswordVerifier
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close drains and stops the audit dispatcher. The Engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Config returns a copy of the effective configuration, including a
// generated JWT key when none was supplied.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// AuditDropped reports how many audit events were dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}

// Login verifies credentials, opens a session bound to the caller's IP
// (attach it with [WithClientIP]), and issues the first token pair. Any
// prior session of the user is destroyed.
func (e *Engine) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := e.directory.GetUserByUsername(ctx, username)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emit(ctx, AuditEvent{EventType: EventLogin, Error: ErrUserNotFound.Error()})
		return nil, ErrUserNotFound
	}
	if !user.Active {
		e.metricInc(MetricLoginFailure)
		e.emit(ctx, AuditEvent{EventType: EventLogin, UserID: user.UserID, Error: ErrUserInactive.Error()})
		return nil, ErrUserInactive
	}
	if !e.verifier.Verify(password, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emit(ctx, AuditEvent{EventType: EventLogin, UserID: user.UserID, Error: ErrInvalidCredentials.Error()})
		return nil, ErrInvalidCredentials
	}

	accessToken, err := e.jwtManager.CreateAccess(user.UserID, user.Role)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	sess, err := e.sessionStore.Create(
		ctx,
		user.UserID,
		user.Role,
		clientIPFromContext(ctx),
		e.config.JWT.RefreshTTL,
		accessToken,
	)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emit(ctx, AuditEvent{
		EventType: EventLogin,
		UserID:    user.UserID,
		SessionID: sess.ID,
		Success:   true,
	})

	return &LoginResult{
		Identity: Identity{UserID: user.UserID, Role: user.Role},
		Pair:     TokenPair{AccessToken: accessToken, RefreshToken: sess.RefreshToken},
	}, nil
}

// Authorize validates an access token and optionally gates on role. With no
// permittedRoles every valid token passes.
func (e *Engine) Authorize(ctx context.Context, accessToken string, permittedRoles ...string) (Identity, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
		}
	}()

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricAuthorizeDenied)
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}

	id := Identity{UserID: claims.Subject, Role: claims.Role}
	if !roleAllowed(id.Role, permittedRoles) {
		e.metricInc(MetricAuthorizeDenied)
		return Identity{}, ErrRoleMismatch
	}

	return id, nil
}

// Refresh exchanges a refresh token for the session's current token pair,
// rotating it when the token is the session's live generation. Concurrent
// calls with the same token all receive the identical pair.
//
// The user's active flag is rechecked on every refresh; a deactivated
// user's session is destroyed and [ErrUserInactive] returned.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrMissingRefreshToken
	}

	sess, rotated, err := e.coordinator.Refresh(ctx, refreshToken, clientIPFromContext(ctx))
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		switch {
		case errors.Is(err, refresh.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, refresh.ErrExpiredRefresh):
			return nil, ErrExpiredRefresh
		case errors.Is(err, refresh.ErrIPMismatch):
			e.metricInc(MetricIPMismatch)
			e.emit(ctx, AuditEvent{EventType: EventIPMismatch, Error: ErrIPMismatch.Error()})
			return nil, ErrIPMismatch
		case errors.Is(err, refresh.ErrLockTimeout):
			e.metricInc(MetricRefreshLockTimeout)
			return nil, ErrRefreshTimeout
		}
		return nil, err
	}

	user, err := e.directory.GetUserByID(ctx, sess.UserID)
	if err != nil || !user.Active {
		// The account went away or was deactivated mid-session. Kill the
		// session so the refresh token stops working immediately.
		if delErr := e.sessionStore.Delete(ctx, sess); delErr == nil {
			e.metricInc(MetricSessionInvalidated)
		}
		e.metricInc(MetricRefreshFailure)
		e.emit(ctx, AuditEvent{
			EventType: EventDeactivatedUser,
			UserID:    sess.UserID,
			SessionID: sess.ID,
			Error:     ErrUserInactive.Error(),
		})
		return nil, ErrUserInactive
	}

	e.metricInc(MetricRefreshSuccess)
	if !rotated {
		e.metricInc(MetricRefreshRaceAbsorbed)
	}
	e.emit(ctx, AuditEvent{
		EventType: EventRefresh,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Success:   true,
	})

	return &RefreshResult{
		Identity: Identity{UserID: sess.UserID, Role: sess.Role},
		Pair:     TokenPair{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken},
		Rotated:  rotated,
	}, nil
}

// RefreshAndAuthorize is [Engine.Refresh] followed by a role gate on the
// renewed identity. The rotation still commits when the role gate fails;
// only the authorization is denied.
func (e *Engine) RefreshAndAuthorize(ctx context.Context, refreshToken string, permittedRoles ...string) (*RefreshResult, error) {
	result, err := e.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !roleAllowed(result.Identity.Role, permittedRoles) {
		e.metricInc(MetricAuthorizeDenied)
		return nil, ErrRoleMismatch
	}
	return result, nil
}

// Logout destroys the user's session. Returns [ErrSessionNotFound] when the
// user has none.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if err := e.sessionStore.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emit(ctx, AuditEvent{EventType: EventLogout, UserID: userID, Success: true})
	return nil
}

func roleAllowed(role string, permitted []string) bool {
	if len(permitted) == 0 {
		return true
	}
	for _, p := range permitted {
		if role == p {
			return true
		}
	}
	return false
}
