package auth

import (
	"context"
	"errors"
)

var errSessionExpired = errors.New("session expired")

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
	GetSessionAthleteID(ctx context.Context, token string) (int64, error)
}
