package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginTestChecker struct {
	sessions map[string]int64
}

func (c *loginTestChecker) IsLogged(_ context.Context, token string) (bool, error) {
	_, ok := c.sessions[token]
	return ok, nil
}

func (c *loginTestChecker) GetSessionAthleteID(_ context.Context, token string) (int64, error) {
	id, ok := c.sessions[token]
	if !ok {
		return 0, redis.Nil
	}
	return id, nil
}

func TestAuthCheck(t *testing.T) {
	checker := &loginTestChecker{
		sessions: map[string]int64{
			"valid-token": 42,
		},
	}
	authMiddleware := NewAuthMiddlewareHandler(checker)

	var gotAthleteID int64
	var athleteIDFound bool
	handler := authMiddleware.AuthCheck()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAthleteID, athleteIDFound = AthleteIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/recap/2024/dashboard", nil)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/recap/2024/dashboard", nil)
		req.Header.Set("X-YIS-TOKEN", "nope")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/recap/2024/dashboard", nil)
		req.Header.Set("X-YIS-TOKEN", "valid-token")
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, athleteIDFound)
		assert.Equal(t, int64(42), gotAthleteID)
	})

	t.Run("login path always allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login/strava", nil)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("options ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/recap/2024/dashboard", nil)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
