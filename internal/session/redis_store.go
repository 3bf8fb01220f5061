package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trefstays/stays-backend/internal/utils"
)

const adminKeyPrefix = "admin_session:"

// ErrAdminSessionNotFound is returned when a token is unknown or expired
var ErrAdminSessionNotFound = errors.New("admin session not found")

// AdminSession is the server-side record behind an admin session cookie
type AdminSession struct {
	Token     string           `json:"-"`
	AdminID   uuid.UUID        `json:"admin_id"`
	Email     string           `json:"email"`
	IPAddress string           `json:"ip_address"`
	Device    utils.DeviceInfo `json:"device"`
	Remember  bool             `json:"remember"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// RedisStore keeps admin sessions in Redis under admin_session:<token>
type RedisStore struct {
	rdb         *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewRedisStore creates an admin session store
func NewRedisStore(rdb *redis.Client, ttl, rememberTTL time.Duration) *RedisStore {
	return &RedisStore{
		rdb:         rdb,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// TTL returns how long a session lives depending on the remember flag
func (s *RedisStore) TTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.ttl
}

// Create stores a new session and fills in its token and timestamps
func (s *RedisStore) Create(ctx context.Context, sess *AdminSession) error {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return err
	}

	ttl := s.TTL(sess.Remember)
	now := s.now()
	sess.Token = token
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(ttl)

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode admin session: %w", err)
	}
	if err := s.rdb.Set(ctx, adminKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store admin session: %w", err)
	}
	return nil
}

// Get returns the session for token, or ErrAdminSessionNotFound
func (s *RedisStore) Get(ctx context.Context, token string) (*AdminSession, error) {
	if token == "" {
		return nil, ErrAdminSessionNotFound
	}

	val, err := s.rdb.Get(ctx, adminKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAdminSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin session: %w", err)
	}

	var sess AdminSession
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode admin session: %w", err)
	}
	sess.Token = token
	return &sess, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, adminKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	return nil
}
