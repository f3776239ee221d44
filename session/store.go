package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/internal"
)

// ErrNotFound is returned when no session matches the lookup key.
var ErrNotFound = errors.New("session not found")

// ErrRedisUnavailable wraps any Redis transport or command failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed session store. It persists one session record per
// user plus reverse indexes from the current refresh token, the superseded
// refresh token, and the user ID back to the session.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) sessionKey(sessionID string) string {
	return s.prefix + ":sess:" + sessionID
}

func (s *Store) tokenKey(refreshToken string) string {
	return s.prefix + ":rt:" + refreshToken
}

func (s *Store) oldTokenKey(refreshToken string) string {
	return s.prefix + ":ort:" + refreshToken
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

// Create writes a fresh session for the user, replacing any session the user
// already holds. A new login always invalidates the previous one, so stolen
// refresh tokens die as soon as the real user signs in again.
//
//	Performance: up to 2 round trips (prior-session cleanup + TxPipelined write).
func (s *Store) Create(
	ctx context.Context,
	userID, role, clientIP string,
	refreshTTL time.Duration,
	accessToken string,
) (*Session, error) {
	if err := s.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	refreshToken, err := internal.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		Role:             role,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(refreshTTL).UnixMilli(),
		CreatedAt:        now.UnixMilli(),
		ClientIP:         clientIP,
	}

	if err := s.write(ctx, sess, refreshTTL, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.tokenKey(sess.RefreshToken), sess.ID, refreshTTL)
		pipe.Set(ctx, s.userKey(sess.UserID), sess.ID, refreshTTL)
	}); err != nil {
		return nil, err
	}

	return sess, nil
}

// FindByRefreshToken resolves the session currently holding refreshToken.
//
//	Performance: 2 Redis GETs (index + record).
func (s *Store) FindByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	return s.findByIndex(ctx, s.tokenKey(refreshToken))
}

// FindByOldRefreshToken resolves the session whose previous-generation
// refresh token was refreshToken. Used by the refresh grace window to hand
// the already-rotated pair back to a duplicate request.
func (s *Store) FindByOldRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	return s.findByIndex(ctx, s.oldTokenKey(refreshToken))
}

// FindByUserID resolves a user's single active session.
func (s *Store) FindByUserID(ctx context.Context, userID string) (*Session, error) {
	return s.findByIndex(ctx, s.userKey(userID))
}

// Rotate replaces the session's refresh token with a newly generated one,
// keeping the replaced token as OldRefreshToken, and stores the freshly
// issued access token. The refresh expiry slides forward by refreshTTL.
//
// Callers must hold the refresh coordinator's shard lock for the token being
// rotated; the store itself does no compare-and-swap.
func (s *Store) Rotate(
	ctx context.Context,
	sess *Session,
	refreshTTL time.Duration,
	accessToken string,
) (*Session, error) {
	nextToken, err := internal.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	rotated := *sess
	rotated.OldRefreshToken = sess.RefreshToken
	rotated.RefreshToken = nextToken
	rotated.AccessToken = accessToken
	rotated.RefreshExpiresAt = time.Now().Add(refreshTTL).UnixMilli()

	if err := s.write(ctx, &rotated, refreshTTL, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.tokenKey(sess.RefreshToken))
		if sess.OldRefreshToken != "" {
			pipe.Del(ctx, s.oldTokenKey(sess.OldRefreshToken))
		}
		pipe.Set(ctx, s.tokenKey(rotated.RefreshToken), rotated.ID, refreshTTL)
		pipe.Set(ctx, s.oldTokenKey(rotated.OldRefreshToken), rotated.ID, refreshTTL)
		pipe.Set(ctx, s.userKey(rotated.UserID), rotated.ID, refreshTTL)
	}); err != nil {
		return nil, err
	}

	return &rotated, nil
}

// DeleteByUserID removes the user's session and every index pointing at it.
// Returns [ErrNotFound] when the user has no session.
func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	sess, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.delete(ctx, sess)
}

// Delete removes a session and its indexes. Idempotent with respect to the
// record itself; indexes are deleted unconditionally.
func (s *Store) Delete(ctx context.Context, sess *Session) error {
	return s.delete(ctx, sess)
}

func (s *Store) delete(ctx context.Context, sess *Session) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(sess.ID))
		pipe.Del(ctx, s.tokenKey(sess.RefreshToken))
		if sess.OldRefreshToken != "" {
			pipe.Del(ctx, s.oldTokenKey(sess.OldRefreshToken))
		}
		pipe.Del(ctx, s.userKey(sess.UserID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) findByIndex(ctx context.Context, indexKey string) (*Session, error) {
	sessionID, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

func (s *Store) write(
	ctx context.Context,
	sess *Session,
	ttl time.Duration,
	index func(pipe redis.Pipeliner),
) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(sess.ID), data, ttl)
		index(pipe)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
