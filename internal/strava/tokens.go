package strava

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// refresh the token when it expires within this window
const tokenExpiryLeeway = 5 * time.Minute

type credentialsStore interface {
	GetCredentials(ctx context.Context, athleteID int64) (accessToken, refreshToken string, expiresAt int64, err error)
	UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt int64) error
}

type tokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenExchangeResponse, error)
}

// TokenSource hands out valid access tokens per athlete, transparently
// refreshing an expiring credential and persisting the rotated pair.
type TokenSource struct {
	store   credentialsStore
	client  tokenRefresher
	nowFunc func() time.Time
}

func NewTokenSource(store credentialsStore, client tokenRefresher) *TokenSource {
	return &TokenSource{
		store:   store,
		client:  client,
		nowFunc: time.Now,
	}
}

// GetValidToken returns a usable access token for the athlete. When no
// refresh is possible the error is ErrAuthExpired (or wraps the store's
// not-found error when there is no credential row at all).
func (ts *TokenSource) GetValidToken(ctx context.Context, athleteID int64) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.tokenSource.getValidToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", athleteID))

	accessToken, refreshToken, expiresAt, err := ts.store.GetCredentials(ctx, athleteID)
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}

	if refreshToken == "" {
		return "", ErrAuthExpired
	}

	now := ts.nowFunc().Unix()
	if expiresAt > now+int64(tokenExpiryLeeway.Seconds()) {
		return accessToken, nil
	}

	refreshed, err := ts.client.RefreshTokens(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrAuthExpired) {
			return "", ErrAuthExpired
		}
		return "", fmt.Errorf("refresh tokens: %w", err)
	}

	if err := ts.store.UpdateTokens(
		ctx, athleteID,
		refreshed.AccessToken, refreshed.RefreshToken, refreshed.ExpiresAt,
	); err != nil {
		// the refreshed token is still valid for this request, only the
		// persisted copy is stale; next call refreshes again
		log.Errorf("failed to persist refreshed tokens for athlete %d: %s", athleteID, err)
	}

	return refreshed.AccessToken, nil
}
