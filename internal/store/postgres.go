package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airlens/airlens/internal/health"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const readingColumns = `id, user_id, latitude, longitude,
	pm25, pm10, no2, so2, o3, co,
	aqi, aqi_category,
	temperature, humidity, wind_speed,
	source, sensor_id, reading_time`

func (s *PostgresStore) CreateReading(ctx context.Context, r *health.AirQualityReading) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO air_quality_readings (user_id, latitude, longitude,
			pm25, pm10, no2, so2, o3, co,
			aqi, aqi_category,
			temperature, humidity, wind_speed,
			source, sensor_id, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`,
		r.UserID, r.Latitude, r.Longitude,
		r.PM25, r.PM10, r.NO2, r.SO2, r.O3, r.CO,
		r.AQI, r.AQICategory,
		r.Temperature, r.Humidity, r.WindSpeed,
		r.Source, r.SensorID, r.ReadingTime,
	).Scan(&r.ID)
}

func scanReading(row pgx.Row) (*health.AirQualityReading, error) {
	r := &health.AirQualityReading{}
	var userID, category, source, sensorID sql.NullString
	err := row.Scan(
		&r.ID, &userID, &r.Latitude, &r.Longitude,
		&r.PM25, &r.PM10, &r.NO2, &r.SO2, &r.O3, &r.CO,
		&r.AQI, &category,
		&r.Temperature, &r.Humidity, &r.WindSpeed,
		&source, &sensorID, &r.ReadingTime,
	)
	if err != nil {
		return nil, err
	}
	r.UserID = userID.String
	r.AQICategory = category.String
	r.Source = source.String
	r.SensorID = sensorID.String
	return r, nil
}

func (s *PostgresStore) GetReading(ctx context.Context, id uuid.UUID) (*health.AirQualityReading, error) {
	r, err := scanReading(s.pool.QueryRow(ctx, `
		SELECT `+readingColumns+`
		FROM air_quality_readings WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) ListReadings(ctx context.Context, filter ReadingFilter) ([]*health.AirQualityReading, error) {
	query := `SELECT ` + readingColumns + ` FROM air_quality_readings WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.UserID != "" {
		n++
		query += fmt.Sprintf(" AND user_id = $%d", n)
		args = append(args, filter.UserID)
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, filter.Source)
	}
	if filter.SensorID != "" {
		n++
		query += fmt.Sprintf(" AND sensor_id = $%d", n)
		args = append(args, filter.SensorID)
	}
	if filter.MinAQI > 0 {
		n++
		query += fmt.Sprintf(" AND aqi >= $%d", n)
		args = append(args, filter.MinAQI)
	}
	if !filter.Since.IsZero() {
		n++
		query += fmt.Sprintf(" AND reading_time >= $%d", n)
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		n++
		query += fmt.Sprintf(" AND reading_time < $%d", n)
		args = append(args, filter.Until)
	}

	query += " ORDER BY reading_time DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*health.AirQualityReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *PostgresStore) LatestReading(ctx context.Context, userID string) (*health.AirQualityReading, error) {
	r, err := scanReading(s.pool.QueryRow(ctx, `
		SELECT `+readingColumns+`
		FROM air_quality_readings
		WHERE user_id = $1
		ORDER BY reading_time DESC
		LIMIT 1`, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) ReadingsSince(ctx context.Context, userID string, since time.Time) ([]health.AirQualityReading, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+readingColumns+`
		FROM air_quality_readings
		WHERE user_id = $1 AND reading_time >= $2
		ORDER BY reading_time ASC`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []health.AirQualityReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	return readings, rows.Err()
}

func (s *PostgresStore) UpsertUserProfile(ctx context.Context, p *health.UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, age, height_cm, weight_kg, activity_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			updated_at = now()`,
		p.UserID, p.Age, p.HeightCm, p.WeightKg, string(p.ActivityLevel))
	return err
}

func (s *PostgresStore) GetUserProfile(ctx context.Context, userID string) (*health.UserProfile, error) {
	p := &health.UserProfile{}
	var activity sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, age, height_cm, weight_kg, activity_level
		FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Age, &p.HeightCm, &p.WeightKg, &activity)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.ActivityLevel = health.ActivityLevel(activity.String)
	return p, nil
}

func (s *PostgresStore) UpsertHealthProfile(ctx context.Context, p *health.HealthProfile) error {
	respJSON, _ := json.Marshal(p.RespiratoryConditions)
	cardioJSON, _ := json.Marshal(p.CardiovascularConditions)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO health_profiles (user_id, respiratory_conditions, cardiovascular_conditions,
			risk_level, baseline_lung_capacity, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			respiratory_conditions = EXCLUDED.respiratory_conditions,
			cardiovascular_conditions = EXCLUDED.cardiovascular_conditions,
			risk_level = EXCLUDED.risk_level,
			baseline_lung_capacity = EXCLUDED.baseline_lung_capacity,
			updated_at = now()`,
		p.UserID, respJSON, cardioJSON, string(p.RiskLevel), p.BaselineLungCapacity)
	return err
}

func (s *PostgresStore) GetHealthProfile(ctx context.Context, userID string) (*health.HealthProfile, error) {
	p := &health.HealthProfile{}
	var respJSON, cardioJSON []byte
	var riskLevel sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, respiratory_conditions, cardiovascular_conditions, risk_level, baseline_lung_capacity
		FROM health_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &respJSON, &cardioJSON, &riskLevel, &p.BaselineLungCapacity)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.RiskLevel = health.SelfRisk(riskLevel.String)
	if respJSON != nil {
		_ = json.Unmarshal(respJSON, &p.RespiratoryConditions)
	}
	if cardioJSON != nil {
		_ = json.Unmarshal(cardioJSON, &p.CardiovascularConditions)
	}
	return p, nil
}

const scoreColumns = `id, user_id,
	respiratory, cardiovascular, immune, activity_impact, overall,
	risk_level, risk_category,
	contributing_factors, recommendations,
	computed_at, expires_at`

func (s *PostgresStore) CreateScoreResult(ctx context.Context, r *health.ScoreResult) error {
	factorsJSON, _ := json.Marshal(r.Factors)
	recsJSON, _ := json.Marshal(r.Recommendations)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO health_scores (id, user_id,
			respiratory, cardiovascular, immune, activity_impact, overall,
			risk_level, risk_category,
			contributing_factors, recommendations,
			computed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.UserID,
		r.Respiratory, r.Cardiovascular, r.Immune, r.ActivityImpact, r.Overall,
		r.RiskLevel, string(r.RiskCategory),
		factorsJSON, recsJSON,
		r.ComputedAt, r.ExpiresAt)
	return err
}

func scanScore(row pgx.Row) (*health.ScoreResult, error) {
	r := &health.ScoreResult{}
	var category string
	var factorsJSON, recsJSON []byte
	err := row.Scan(
		&r.ID, &r.UserID,
		&r.Respiratory, &r.Cardiovascular, &r.Immune, &r.ActivityImpact, &r.Overall,
		&r.RiskLevel, &category,
		&factorsJSON, &recsJSON,
		&r.ComputedAt, &r.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	r.RiskCategory = health.RiskCategory(category)
	if factorsJSON != nil {
		_ = json.Unmarshal(factorsJSON, &r.Factors)
	}
	if recsJSON != nil {
		_ = json.Unmarshal(recsJSON, &r.Recommendations)
	}
	return r, nil
}

func (s *PostgresStore) GetScoreResult(ctx context.Context, id uuid.UUID) (*health.ScoreResult, error) {
	r, err := scanScore(s.pool.QueryRow(ctx, `
		SELECT `+scoreColumns+`
		FROM health_scores WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) LatestScoreResult(ctx context.Context, userID string) (*health.ScoreResult, error) {
	r, err := scanScore(s.pool.QueryRow(ctx, `
		SELECT `+scoreColumns+`
		FROM health_scores
		WHERE user_id = $1
		ORDER BY computed_at DESC
		LIMIT 1`, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// ListStaleScores returns users whose most recent score has expired as of the
// given instant, with the coordinates of their last reading for refresh.
func (s *PostgresStore) ListStaleScores(ctx context.Context, asOf time.Time, limit int) ([]StaleScore, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT latest.user_id, latest.expires_at,
			COALESCE(r.latitude, 0), COALESCE(r.longitude, 0)
		FROM (
			SELECT DISTINCT ON (user_id) user_id, expires_at
			FROM health_scores
			ORDER BY user_id, computed_at DESC
		) latest
		LEFT JOIN LATERAL (
			SELECT latitude, longitude
			FROM air_quality_readings
			WHERE user_id = latest.user_id
			ORDER BY reading_time DESC
			LIMIT 1
		) r ON true
		WHERE latest.expires_at <= $1
		LIMIT $2`, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []StaleScore
	for rows.Next() {
		var s StaleScore
		if err := rows.Scan(&s.UserID, &s.ExpiresAt, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM air_quality_readings),
			(SELECT COUNT(*) FROM air_quality_readings WHERE reading_time > now() - interval '24 hours'),
			(SELECT COUNT(*) FROM user_profiles),
			(SELECT COUNT(*) FROM health_scores),
			(SELECT COUNT(*) FROM (
				SELECT DISTINCT ON (user_id) expires_at
				FROM health_scores ORDER BY user_id, computed_at DESC
			) latest WHERE latest.expires_at <= now()),
			COALESCE((SELECT AVG(aqi) FROM air_quality_readings WHERE reading_time > now() - interval '24 hours'), 0),
			COALESCE((SELECT MAX(aqi) FROM air_quality_readings WHERE reading_time > now() - interval '24 hours'), 0),
			COALESCE((SELECT AVG(overall) FROM health_scores WHERE computed_at > now() - interval '24 hours'), 0),
			(SELECT COUNT(*) FROM (
				SELECT DISTINCT ON (user_id) risk_category
				FROM health_scores ORDER BY user_id, computed_at DESC
			) latest WHERE latest.risk_category = 'critical')`,
	).Scan(
		&stats.TotalReadings, &stats.ReadingsLast24h, &stats.TotalUsers,
		&stats.TotalScores, &stats.StaleScores,
		&stats.AvgAQILast24h, &stats.MaxAQILast24h, &stats.AvgOverallScore,
		&stats.CriticalRiskUsers,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *PostgresStore) DeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM air_quality_readings WHERE reading_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteScoresBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM health_scores WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
