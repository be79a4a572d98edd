package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := c.GetSessionAthleteID(ctx, token)
	if err == redis.Nil || err == errSessionExpired {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSessionAthleteID resolves the session token to the owning athlete.
// Returns redis.Nil when no such session exists.
func (c *LoginChecker) GetSessionAthleteID(ctx context.Context, token string) (int64, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := c.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return 0, err
	}

	athleteID, createdAt, err := parseSessionValue(cmd.Val())
	if err != nil {
		return 0, err
	}

	if time.Since(createdAt) > c.ttl {
		return 0, errSessionExpired
	}

	return athleteID, nil
}
