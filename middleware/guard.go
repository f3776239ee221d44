package middleware

import (
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	goGuard "github.com/MrEthical07/goGuard"
)

// jwtShape screens obvious garbage before the engine parses the token.
var jwtShape = regexp.MustCompile(`^[A-Za-z0-9\-_=]+\.[A-Za-z0-9\-_=]+\.[A-Za-z0-9\-_.+/=]*$`)

// Options configures one [Guard] instance. Zero-value fields fall back to
// the engine's Middleware and Cookie configuration.
type Options struct {
	// PermittedRoles restricts the route to these roles. Empty permits any
	// authenticated identity.
	PermittedRoles []string
	// RedirectURL overrides the engine-wide failure redirect.
	RedirectURL string
	// Status, when non-zero, replies with this code instead of redirecting.
	Status int
	// SessionExpiredMessage is carried to the login page via flash cookie
	// on redirect.
	SessionExpiredMessage string
}

// Guard authenticates each request before next runs. The access token is
// taken from the Authorization header first, then the access cookie. An
// expired or role-stale token falls through to refresh-cookie renewal;
// renewed cookies are written before next so the handler's response carries
// the rotated pair.
func Guard(engine *goGuard.Engine, opts Options) func(http.Handler) http.Handler {
	var cfg goGuard.Config
	if engine != nil {
		cfg = engine.Config()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := goGuard.WithClientIP(r.Context(), clientIP(r))

			if token, ok := accessToken(r, cfg.Cookie.AccessName); ok && jwtShape.MatchString(token) {
				id, err := engine.Authorize(ctx, token, opts.PermittedRoles...)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(goGuard.WithIdentity(ctx, id)))
					return
				}
				// Expired, tampered, or the session role changed since the
				// token was minted. All of these may still renew cleanly.
			}

			refreshToken := cookieValue(r, cfg.Cookie.RefreshName)
			result, err := engine.RefreshAndAuthorize(ctx, refreshToken, opts.PermittedRoles...)
			if err != nil {
				reject(w, cfg, opts)
				return
			}

			setAuthCookies(w, cfg, result.Pair)
			next.ServeHTTP(w, r.WithContext(goGuard.WithIdentity(ctx, result.Identity)))
		})
	}
}

func reject(w http.ResponseWriter, cfg goGuard.Config, opts Options) {
	DiscardAuthCookies(w, cfg)

	status := opts.Status
	if status == 0 {
		status = cfg.Middleware.OverrideStatus
	}
	if status != 0 {
		http.Error(w, "unauthorized", status)
		return
	}

	target := opts.RedirectURL
	if target == "" {
		target = cfg.Middleware.RedirectURL
	}

	if cfg.Cookie.FlashName != "" {
		message := opts.SessionExpiredMessage
		if message == "" {
			message = "session expired"
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cfg.Cookie.FlashName,
			Value:    url.QueryEscape(message),
			Path:     "/",
			Secure:   cfg.Cookie.Secure,
			HttpOnly: false,
		})
	}

	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusSeeOther)
}

func setAuthCookies(w http.ResponseWriter, cfg goGuard.Config, pair goGuard.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Cookie.AccessName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(cfg.JWT.AccessTTL.Seconds()),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Cookie.RefreshName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(cfg.JWT.RefreshTTL.Seconds()),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// DiscardAuthCookies expires the access and refresh cookies named in cfg.
// The guard calls it on every failed renewal; logout handlers call it to
// clear the browser's credentials after [goGuard.Engine.Logout].
func DiscardAuthCookies(w http.ResponseWriter, cfg goGuard.Config) {
	for _, name := range []string{cfg.Cookie.AccessName, cfg.Cookie.RefreshName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   cfg.Cookie.Secure,
			HttpOnly: true,
		})
	}
}

func accessToken(r *http.Request, cookieName string) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if token := cookieValue(r, cookieName); token != "" {
		return token, true
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func cookieValue(r *http.Request, name string) string {
	if name == "" {
		return ""
	}
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
