package athlete

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stmilos/yearinsport/internal/auth"
	"github.com/stmilos/yearinsport/internal/middleware"
	"github.com/stmilos/yearinsport/internal/strava"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

var _ codeExchanger = (*exchangerMock)(nil)

type exchangerMock struct {
	resp *strava.TokenExchangeResponse
	err  error
}

func (e *exchangerMock) ExchangeCode(_ context.Context, _ string) (*strava.TokenExchangeResponse, error) {
	return e.resp, e.err
}

var _ athleteStore = (*storeMock)(nil)

type storeMock struct {
	upserted  []Athlete
	upsertErr error
	athletes  map[int64]*Athlete
}

func (s *storeMock) Upsert(_ context.Context, a Athlete) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, a)
	return nil
}

func (s *storeMock) Get(_ context.Context, id int64) (*Athlete, error) {
	a, ok := s.athletes[id]
	if !ok {
		return nil, ErrAthleteNotFound
	}
	return a, nil
}

func loginRequestBody(t *testing.T, code string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{"code": code})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestHandler_Login(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	authService := auth.NewService(time.Hour, rdb)
	authService.RandStringFunc = func(_ int) (string, error) {
		return "test-token", nil
	}

	exchanger := &exchangerMock{resp: &strava.TokenExchangeResponse{
		Tokens: strava.Tokens{
			AccessToken:  "acc",
			RefreshToken: "ref",
			ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
		},
		Athlete: &strava.AthleteInfo{
			ID:        101,
			Firstname: "Ana",
			Lastname:  "Byrne",
			Profile:   "https://cdn/ana.jpg",
		},
	}}
	store := &storeMock{}
	handler := NewHandler(exchanger, store, authService)

	mock.Regexp().ExpectSet("yearinsport-session||test-token", `101::\d+`, 0).SetVal("OK")
	mock.ExpectSAdd("yearinsport-sessions", "test-token").SetVal(1)

	req, err := http.NewRequest("POST", "/login/strava", loginRequestBody(t, "auth-code"))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token   string  `json:"token"`
		Athlete Athlete `json:"athlete"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "test-token", resp.Token)
	assert.Equal(t, int64(101), resp.Athlete.ID)
	assert.Equal(t, "Ana Byrne", resp.Athlete.Name)

	require.Len(t, store.upserted, 1)
	assert.Equal(t, "acc", store.upserted[0].AccessToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Login_BadRequests(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	handler := NewHandler(&exchangerMock{}, &storeMock{}, auth.NewService(time.Hour, rdb))

	t.Run("no body", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/login/strava", bytes.NewReader(nil))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		handler.HandleLogin(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty code", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/login/strava", loginRequestBody(t, ""))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		handler.HandleLogin(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Login_CodeRejected(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	exchanger := &exchangerMock{err: strava.ErrAuthExpired}
	handler := NewHandler(exchanger, &storeMock{}, auth.NewService(time.Hour, rdb))

	req, err := http.NewRequest("POST", "/login/strava", loginRequestBody(t, "stale-code"))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Logout(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	handler := NewHandler(&exchangerMock{}, &storeMock{}, auth.NewService(time.Hour, rdb))

	mock.ExpectDel("yearinsport-session||test-token").SetVal(1)
	mock.ExpectSRem("yearinsport-sessions", "test-token").SetVal(1)

	req, err := http.NewRequest("POST", "/logout", nil)
	require.NoError(t, err)
	req.Header.Set("X-YIS-TOKEN", "test-token")
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Logout_NoToken(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	handler := NewHandler(&exchangerMock{}, &storeMock{}, auth.NewService(time.Hour, rdb))

	req, err := http.NewRequest("POST", "/logout", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_WhoAmI(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	store := &storeMock{athletes: map[int64]*Athlete{
		101: {ID: 101, Name: "Ana Byrne"},
	}}
	handler := NewHandler(&exchangerMock{}, store, auth.NewService(time.Hour, rdb))

	t.Run("known athlete", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/recap/whoami", nil)
		require.NoError(t, err)
		req = req.WithContext(middleware.ContextWithAthleteID(req.Context(), 101))
		rr := httptest.NewRecorder()
		handler.HandleWhoAmI(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var a Athlete
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &a))
		assert.Equal(t, "Ana Byrne", a.Name)
	})

	t.Run("no stored profile", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/recap/whoami", nil)
		require.NoError(t, err)
		req = req.WithContext(middleware.ContextWithAthleteID(req.Context(), 999))
		rr := httptest.NewRecorder()
		handler.HandleWhoAmI(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("no session", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/recap/whoami", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		handler.HandleWhoAmI(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
