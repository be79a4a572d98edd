package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_IsLogged(t *testing.T) {
	db, mock := redismock.NewClientMock()

	loginChecker := NewLoginChecker(time.Hour, db)
	require.NotNil(t, loginChecker)

	ctx := context.Background()

	mock.ExpectGet(sessionKeyPrefix + "invalid token").SetErr(redis.Nil)
	isLogged, err := loginChecker.IsLogged(ctx, "invalid token")
	require.NoError(t, err)
	assert.False(t, isLogged)

	testToken := "test-token"
	now := time.Now()
	sessionKey := sessionKeyPrefix + testToken

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("42::%d", now.Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.True(t, isLogged)

	// expired session
	longAgo := now.Add(-2 * time.Hour)
	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("42::%d", longAgo.Unix()))
	isLogged, err = loginChecker.IsLogged(ctx, testToken)
	require.NoError(t, err)
	assert.False(t, isLogged)
}

func TestLoginChecker_GetSessionAthleteID(t *testing.T) {
	db, mock := redismock.NewClientMock()
	loginChecker := NewLoginChecker(time.Hour, db)

	ctx := context.Background()
	now := time.Now()
	sessionKey := sessionKeyPrefix + "test-token"

	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("1312::%d", now.Unix()))
	athleteID, err := loginChecker.GetSessionAthleteID(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, int64(1312), athleteID)

	mock.ExpectGet(sessionKey).SetVal("gibberish")
	_, err = loginChecker.GetSessionAthleteID(ctx, "test-token")
	require.Error(t, err)
}

func TestService_LoginLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()

	service := NewService(time.Hour, db)
	service.RandStringFunc = func(s int) (string, error) {
		return "t0k3n", nil
	}

	ctx := context.Background()
	createdAt := time.Now()

	sessionKey := sessionKeyPrefix + "t0k3n"
	sessionVal := fmt.Sprintf("42::%d", createdAt.Unix())
	mock.ExpectSet(sessionKey, sessionVal, 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "t0k3n").SetVal(1)

	token, err := service.Login(ctx, 42, createdAt)
	require.NoError(t, err)
	assert.Equal(t, "t0k3n", token)

	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, "t0k3n").SetVal(1)
	require.NoError(t, service.Logout(ctx, token))

	require.NoError(t, mock.ExpectationsWereMet())
}
