package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepository is the per-user revocation list of live session tokens.
// A token is accepted only while it is a member of its user's list, so
// removing it (logout) or clearing the list (logout-all) revokes access
// immediately regardless of the token's own expiry.
type SessionRepository interface {
	// Append records a freshly minted token for the user.
	Append(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	// Contains reports whether the exact token is currently live for the user.
	Contains(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// Remove revokes a single token (exact match).
	Remove(ctx context.Context, userID uuid.UUID, token string) error
	// Clear revokes every token for the user.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RedisSessionRepository keeps each user's live tokens as an ordered Redis
// list of token hashes. Expired entries are not actively swept; the key TTL
// covers the common case and stale entries are harmless because the
// middleware checks token expiry independently.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("session_tokens:%s", userID.String())
}

func (r *RedisSessionRepository) Append(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}

	key := sessionKey(userID)

	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, hashToken(token))
	// All tokens share the same lifetime, so the newest append pushes the
	// key expiry far enough out for every live entry.
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Contains(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	hashes, err := r.client.LRange(ctx, sessionKey(userID), 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read session tokens: %w", err)
	}

	want := hashToken(token)
	for _, h := range hashes {
		if h == want {
			return true, nil
		}
	}
	return false, nil
}

func (r *RedisSessionRepository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	err := r.client.LRem(ctx, sessionKey(userID), 0, hashToken(token)).Err()
	if err != nil {
		return fmt.Errorf("failed to remove session token: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session tokens: %w", err)
	}
	return nil
}
