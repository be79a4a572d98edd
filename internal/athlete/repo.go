package athlete

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrAthleteNotFound = errors.New("athlete not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Upsert stores the athlete row, replacing profile and token fields for an
// existing athlete. Called after every OAuth exchange.
func (r *Repo) Upsert(ctx context.Context, a Athlete) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athlete.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", a.ID))

	now := time.Now()
	_, err = r.db.Exec(ctx, `
		INSERT INTO athlete (
			id, name, profile_url, access_token, refresh_token, token_expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			profile_url = EXCLUDED.profile_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.Name, a.ProfileURL, a.AccessToken, a.RefreshToken, a.TokenExpiresAt, now,
	)
	if err != nil {
		return fmt.Errorf("upsert athlete: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (_ *Athlete, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athlete.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", id))

	row := r.db.QueryRow(ctx, `
		SELECT id, name, profile_url, access_token, refresh_token, token_expires_at, created_at, updated_at
		FROM athlete
		WHERE id = $1`,
		id,
	)

	var a Athlete
	err = row.Scan(
		&a.ID, &a.Name, &a.ProfileURL, &a.AccessToken, &a.RefreshToken,
		&a.TokenExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan athlete: %w", err)
	}

	return &a, nil
}

// GetCredentials reads only the stored OAuth credential columns, the shape
// the token source needs to decide on a refresh.
func (r *Repo) GetCredentials(ctx context.Context, id int64) (accessToken, refreshToken string, expiresAt int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athlete.getCredentials")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", id))

	row := r.db.QueryRow(ctx, `
		SELECT access_token, refresh_token, token_expires_at
		FROM athlete
		WHERE id = $1`,
		id,
	)

	err = row.Scan(&accessToken, &refreshToken, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", 0, ErrAthleteNotFound
	}
	if err != nil {
		return "", "", 0, fmt.Errorf("scan athlete credentials: %w", err)
	}

	return accessToken, refreshToken, expiresAt, nil
}

// UpdateTokens persists a rotated credential set after a token refresh.
func (r *Repo) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.athlete.updateTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", id))

	tag, err := r.db.Exec(ctx, `
		UPDATE athlete SET
			access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = $4
		WHERE id = $5`,
		accessToken, refreshToken, expiresAt, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update athlete tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAthleteNotFound
	}
	return nil
}
