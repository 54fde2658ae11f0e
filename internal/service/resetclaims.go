package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrClaimNotFound is returned when no pending reset claim exists for a
// token, either because it was never created, already redeemed, or expired.
var ErrClaimNotFound = errors.New("reset claim not found")

// UserSnapshot is the serialized view of a user bound to a reset token.
type UserSnapshot struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Confirmed bool    `json:"confirmed"`
	Avatar    *string `json:"avatar"`
	Role      string  `json:"role"`
}

// ResetClaimStore binds password-reset tokens to user snapshots for
// single-use redemption. A claim exists iff a reset email was sent and the
// token has not been redeemed or expired.
type ResetClaimStore interface {
	Put(ctx context.Context, token string, snapshot UserSnapshot, ttl time.Duration) error
	Get(ctx context.Context, token string) (*UserSnapshot, error)
	// Redeem returns the snapshot and deletes the claim in one atomic
	// operation, so two concurrent redemptions can never both succeed.
	Redeem(ctx context.Context, token string) (*UserSnapshot, error)
	Delete(ctx context.Context, token string) error
}

type redisClaimStore struct {
	client *redis.Client
}

// NewResetClaimStore creates a redis-backed ResetClaimStore.
func NewResetClaimStore(client *redis.Client) ResetClaimStore {
	return &redisClaimStore{client: client}
}

func claimKey(token string) string {
	return fmt.Sprintf("reset_claim:%s", token)
}

func (s *redisClaimStore) Put(ctx context.Context, token string, snapshot UserSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, claimKey(token), data, ttl).Err()
}

func (s *redisClaimStore) Get(ctx context.Context, token string) (*UserSnapshot, error) {
	data, err := s.client.Get(ctx, claimKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return unmarshalSnapshot(data)
}

func (s *redisClaimStore) Redeem(ctx context.Context, token string) (*UserSnapshot, error) {
	data, err := s.client.GetDel(ctx, claimKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return unmarshalSnapshot(data)
}

func (s *redisClaimStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, claimKey(token)).Err()
}

func unmarshalSnapshot(data []byte) (*UserSnapshot, error) {
	var snapshot UserSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
