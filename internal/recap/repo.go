package recap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stmilos/yearinsport/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrActivityNotFound = errors.New("activity not found")

// Repo is the local activity cache: one row per (athlete, external id),
// range-queried by the local start date string.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const activityColumns = `
	id, athlete_id, external_id, name, activity_type, sport_type,
	distance, moving_time, elapsed_time, elevation_gain,
	start_time_utc, start_time_local, timezone, kudos_count,
	avg_speed, max_speed, avg_heartrate, max_heartrate,
	avg_watts, max_watts, weighted_avg_watts, raw_data, fetched_at`

// ListForYear returns the athlete's activities whose local start date falls
// in [year-01-01, year+1-01-01), newest first. The comparison is plain text
// ordering on the local date prefix, mirroring the upstream's local-date
// semantics; it must not become a timezone-aware comparison.
func (r *Repo) ListForYear(ctx context.Context, athleteID int64, year int) (_ []ActivityRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recap.listForYear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", athleteID))
	span.SetAttributes(attribute.Int("year", year))

	startOfYear, endOfYear := yearLocalDateRange(year)

	rows, err := r.db.Query(ctx, `
		SELECT `+activityColumns+`
		FROM activity
		WHERE athlete_id = $1
			AND start_time_local >= $2
			AND start_time_local < $3
		ORDER BY start_time_local DESC`,
		athleteID, startOfYear, endOfYear,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2records: %w", err)
	}
	return records, nil
}

// HasAny is the cheap cache-freshness probe; it never materializes rows.
func (r *Repo) HasAny(ctx context.Context, athleteID int64, year int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recap.hasAny")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("athlete.id", athleteID))
	span.SetAttributes(attribute.Int("year", year))

	startOfYear, endOfYear := yearLocalDateRange(year)

	var exists bool
	row := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM activity
			WHERE athlete_id = $1
				AND start_time_local >= $2
				AND start_time_local < $3
		)`,
		athleteID, startOfYear, endOfYear,
	)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}

	return exists, nil
}

// LastSyncedAt returns the max fetched-at across all of the athlete's
// records, or nil when nothing was ever synced.
func (r *Repo) LastSyncedAt(ctx context.Context, athleteID int64) (_ *time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recap.lastSyncedAt")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var nullFetchedAt sql.NullTime
	row := r.db.QueryRow(ctx, `
		SELECT MAX(fetched_at) FROM activity WHERE athlete_id = $1
	`, athleteID)

	if err := row.Scan(&nullFetchedAt); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	if nullFetchedAt.Valid {
		return &nullFetchedAt.Time, nil
	}

	return nil, nil
}

// Upsert inserts the record, or, for an existing (athlete, external id)
// pair, updates only the fields the upstream considers mutable: name,
// kudos, power stats, raw payload and fetched-at. Identity and the original
// measured core never change on re-sync, and repeated calls with identical
// input leave exactly one row.
func (r *Repo) Upsert(ctx context.Context, rec ActivityRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recap.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("activity.externalId", rec.ExternalID))

	_, err = r.db.Exec(ctx, `
		INSERT INTO activity (
			athlete_id, external_id, name, activity_type, sport_type,
			distance, moving_time, elapsed_time, elevation_gain,
			start_time_utc, start_time_local, timezone, kudos_count,
			avg_speed, max_speed, avg_heartrate, max_heartrate,
			avg_watts, max_watts, weighted_avg_watts, raw_data, fetched_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		ON CONFLICT (athlete_id, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			kudos_count = EXCLUDED.kudos_count,
			avg_watts = EXCLUDED.avg_watts,
			max_watts = EXCLUDED.max_watts,
			weighted_avg_watts = EXCLUDED.weighted_avg_watts,
			raw_data = EXCLUDED.raw_data,
			fetched_at = EXCLUDED.fetched_at`,
		rec.AthleteID, rec.ExternalID, rec.Name, rec.Type, rec.SportType,
		rec.DistanceMeters, rec.MovingTimeSeconds, rec.ElapsedTimeSeconds, rec.ElevationGainMeters,
		rec.StartTimeUTC, rec.StartTimeLocal, rec.Timezone, rec.KudosCount,
		speedToFixed(rec.AverageSpeedMps), speedToFixed(rec.MaxSpeedMps),
		rec.AvgHeartrate, rec.MaxHeartrate,
		rec.AvgWatts, rec.MaxWatts, rec.WeightedWatts,
		rec.Raw, rec.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert activity: %w", err)
	}
	return nil
}

// GetByExternalID returns one of the athlete's records by its upstream id.
func (r *Repo) GetByExternalID(ctx context.Context, athleteID, externalID int64) (_ *ActivityRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recap.getByExternalID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("activity.externalId", externalID))

	rows, err := r.db.Query(ctx, `
		SELECT `+activityColumns+`
		FROM activity
		WHERE athlete_id = $1 AND external_id = $2`,
		athleteID, externalID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2records: %w", err)
	}
	if len(records) != 1 {
		return nil, ErrActivityNotFound
	}

	return &records[0], nil
}

func (r *Repo) rows2records(rows pgx.Rows) ([]ActivityRecord, error) {
	var records []ActivityRecord
	for rows.Next() {
		var rec ActivityRecord
		var avgSpeed, maxSpeed int64
		if err := rows.Scan(
			&rec.ID, &rec.AthleteID, &rec.ExternalID, &rec.Name, &rec.Type, &rec.SportType,
			&rec.DistanceMeters, &rec.MovingTimeSeconds, &rec.ElapsedTimeSeconds, &rec.ElevationGainMeters,
			&rec.StartTimeUTC, &rec.StartTimeLocal, &rec.Timezone, &rec.KudosCount,
			&avgSpeed, &maxSpeed, &rec.AvgHeartrate, &rec.MaxHeartrate,
			&rec.AvgWatts, &rec.MaxWatts, &rec.WeightedWatts, &rec.Raw, &rec.FetchedAt,
		); err != nil {
			return nil, err
		}

		rec.AverageSpeedMps = speedFromFixed(avgSpeed)
		rec.MaxSpeedMps = speedFromFixed(maxSpeed)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = make([]ActivityRecord, 0)
	}

	return records, nil
}

// speeds are persisted as fixed-point integers, m/s scaled by 1000
func speedToFixed(mps float64) int64 {
	return int64(math.Round(mps * 1000))
}

func speedFromFixed(fixed int64) float64 {
	return float64(fixed) / 1000
}

// roundSpeed normalizes a raw upstream speed through the same fixed-point
// transform the store applies, so just-synced records and their stored
// projection are structurally equivalent.
func roundSpeed(mps float64) float64 {
	return speedFromFixed(speedToFixed(mps))
}

func yearLocalDateRange(year int) (start, end string) {
	return fmt.Sprintf("%d-01-01", year), fmt.Sprintf("%d-01-01", year+1)
}
