package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const defaultSessionTTL = time.Hour

// SessionStore resolves a session id to its owner.
type SessionStore interface {
	Lookup(ctx context.Context, sessionID string) (string, error)
}

// RedisSessions reads sessions stored as session:{id} -> owner id. Every successful
// lookup extends the session by TTL.
type RedisSessions struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisSessions connects to the Redis instance at url (redis://host:port/db).
func NewRedisSessions(url string, ttl time.Duration) (*RedisSessions, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessions{Client: redis.NewClient(opts), TTL: ttl}, nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessions) Lookup(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	key := sessionKey(sessionID)
	owner, err := s.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if strings.TrimSpace(owner) == "" {
		return "", ErrSessionNotFound
	}
	if err := s.Client.Expire(ctx, key, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("extend session: %w", err)
	}
	return owner, nil
}

// Create stores a new session for owner. Used by local tooling; session issuance
// belongs to the identity service.
func (s *RedisSessions) Create(ctx context.Context, sessionID, owner string) error {
	return s.Client.Set(ctx, sessionKey(sessionID), owner, s.TTL).Err()
}

func (s *RedisSessions) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisSessions) Close() error {
	return s.Client.Close()
}

var _ SessionStore = (*RedisSessions)(nil)
