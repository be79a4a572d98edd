package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stmilos/yearinsport/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "yearinsport-session||"
	tokensSetKey     = "yearinsport-sessions"
)

// Service issues and revokes athlete sessions, stored in redis as
// "<prefix><token>" -> "<athleteID>::<createdAtUnix>".
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) Login(ctx context.Context, athleteID int64, createdAt time.Time) (string, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	sessionVal := fmt.Sprintf("%d::%d", athleteID, createdAt.Unix())
	cmdSet := s.redisClient.Set(ctx, sessionKey, sessionVal, 0)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	cmdSAdd := s.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	sessionKey := sessionKeyPrefix + token
	cmdDel := s.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return err
	}

	cmdSRem := s.redisClient.SRem(ctx, tokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return err
	}

	return nil
}

// ScanAndClean removes expired sessions from redis.
func (s *Service) ScanAndClean(ctx context.Context) {
	tokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("session scan and clean, get tokens: %s", err)
		return
	}

	cleaned := 0
	for _, token := range tokens {
		sessionKey := sessionKeyPrefix + token
		val, err := s.redisClient.Get(ctx, sessionKey).Result()
		if err != nil {
			// session value gone, drop the dangling set member
			s.redisClient.SRem(ctx, tokensSetKey, token)
			cleaned++
			continue
		}

		_, createdAt, err := parseSessionValue(val)
		if err != nil || time.Since(createdAt) > s.ttl {
			s.redisClient.Del(ctx, sessionKey)
			s.redisClient.SRem(ctx, tokensSetKey, token)
			cleaned++
		}
	}

	log.Debugf("session scan and clean: %d sessions removed", cleaned)
}

func parseSessionValue(val string) (athleteID int64, createdAt time.Time, err error) {
	parts := strings.Split(val, "::")
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("malformed session value: %s", val)
	}

	athleteID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse session athlete id: %w", err)
	}

	createdAtUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse session created at: %w", err)
	}

	return athleteID, time.Unix(createdAtUnix, 0), nil
}
