package jwt

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySize is the size of the HMAC-SHA512 signing key in bytes.
const KeySize = 64

// MinKeySize is the smallest key accepted from configuration. Keys shorter
// than the HS512 block would weaken the MAC.
const MinKeySize = 32

// ErrTokenExpired is returned by ParseAccess when the token's expiry has passed.
var ErrTokenExpired = errors.New("access token expired")

// ErrTokenMalformed is returned by ParseAccess when the token is structurally
// invalid or its signature does not verify.
var ErrTokenMalformed = errors.New("access token malformed")

// NewProcessKey generates a fresh HS512 signing key from crypto/rand.
// The Builder calls it exactly once per process when no key is configured.
func NewProcessKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Config carries the immutable signing parameters for a [Manager].
type Config struct {
	AccessTTL time.Duration
	Key       []byte
	Leeway    time.Duration
}

// AccessClaims are the claims embedded in every issued access token: the
// subject (user ID), the role, and the registered expiry.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed access tokens. The key is read-only
// after construction, so a single Manager is safe for unsynchronized
// concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.Key) < MinKeySize {
		return nil, errors.New("signing key too short")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// CreateAccess signs a token carrying subject and role with expiry
// now + AccessTTL. It cannot fail for a Manager that passed construction
// except on internal signing errors.
func (m *Manager) CreateAccess(subject, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(m.config.Key)
}

// ParseAccess verifies signature and expiry and returns the embedded claims.
// Expired-but-otherwise-valid tokens fail with [ErrTokenExpired]; everything
// else fails with [ErrTokenMalformed]. ParseAccess performs no I/O.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
