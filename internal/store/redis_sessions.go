package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionsKeyPrefix is the Redis key prefix for the set of a user's tokens
	UserSessionsKeyPrefix = "user_sessions:"
)

// RedisSessions keeps session tokens in Redis with a TTL.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// CreateSession stores a new token for userID. Existing sessions stay valid.
func (s *RedisSessions) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	userKey := UserSessionsKeyPrefix + userID
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+token, userID, ttl)
	pipe.SAdd(ctx, userKey, token)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessions) SessionUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisSessions) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionKey := SessionKeyPrefix + token

	userID, err := s.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, UserSessionsKeyPrefix+userID, token)
	pipe.Del(ctx, sessionKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessions) DeleteUserSessions(ctx context.Context, userID string) error {
	userKey := UserSessionsKeyPrefix + userID

	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, SessionKeyPrefix+t)
	}
	keys = append(keys, userKey)
	return s.client.Del(ctx, keys...).Err()
}
