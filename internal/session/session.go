package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a token does not resolve to a live session,
// either because it never existed or because it expired.
var ErrNoSession = errors.New("no session")

const keyPrefix = "session:"

// Manager issues and resolves opaque session tokens. Sessions live in Redis
// so they survive process restarts and are shared across instances; the
// token itself carries no identity, only a lookup key.
type Manager struct {
	rdb         *redis.Client
	defaultTTL  time.Duration
	loginTTL    time.Duration
	rememberTTL time.Duration
}

func NewManager(rdb *redis.Client, defaultTTL, loginTTL, rememberTTL time.Duration) *Manager {
	return &Manager{
		rdb:         rdb,
		defaultTTL:  defaultTTL,
		loginTTL:    loginTTL,
		rememberTTL: rememberTTL,
	}
}

// TTL returns the session lifetime for a login with the given remember-me
// choice. The cookie Max-Age mirrors this value.
func (m *Manager) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return m.rememberTTL
	}
	if m.loginTTL > 0 {
		return m.loginTTL
	}
	return m.defaultTTL
}

// Create stores a new session for the user and returns its token.
func (m *Manager) Create(ctx context.Context, userID int, rememberMe bool) (string, error) {
	token := uuid.NewString()
	if err := m.rdb.Set(ctx, keyPrefix+token, userID, m.TTL(rememberMe)).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id behind the token, or ErrNoSession when the
// token is unknown or expired.
func (m *Manager) Resolve(ctx context.Context, token string) (int, error) {
	value, err := m.rdb.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("resolve session: %w", err)
	}

	userID, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("resolve session: bad user id %q", value)
	}
	return userID, nil
}

// Destroy removes the session. Destroying a token that no longer exists is
// not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if err := m.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
