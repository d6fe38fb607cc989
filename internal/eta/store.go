// Package eta predicts pickup/delivery travel time from past trips.
package eta

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Sample is one completed trip observation.
type Sample struct {
	ID           int64
	DistanceKm   float64
	TrafficLevel float64
	AgentScore   float64
	Minutes      float64
	CreatedAt    time.Time
}

// SampleStore persists trip samples in SQLite.
type SampleStore struct {
	conn *sql.DB
	path string
}

// OpenSampleStore opens (and creates if needed) the sample database at path.
// WAL mode is enabled for concurrent reader/writer access.
func OpenSampleStore(path string) (*SampleStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.ETA_STORE_FAILED, "failed to open sample database", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, types.WrapError(types.ETA_STORE_FAILED, "failed to ping sample database", err)
	}

	s := &SampleStore{conn: conn, path: path}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SampleStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS eta_samples (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			distance_km   REAL NOT NULL,
			traffic_level REAL NOT NULL,
			agent_score   REAL NOT NULL,
			minutes       REAL NOT NULL,
			created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_eta_samples_created_at ON eta_samples(created_at);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return types.WrapError(types.ETA_STORE_FAILED, "failed to migrate sample schema", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SampleStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SampleStore) Path() string {
	return s.path
}

// Add records a completed trip.
func (s *SampleStore) Add(ctx context.Context, sample Sample) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO eta_samples (distance_km, traffic_level, agent_score, minutes)
		VALUES (?, ?, ?, ?)`,
		sample.DistanceKm, sample.TrafficLevel, sample.AgentScore, sample.Minutes,
	)
	if err != nil {
		return types.WrapError(types.ETA_STORE_FAILED, "failed to insert sample", err)
	}
	return nil
}

// Samples returns all stored samples, oldest first.
func (s *SampleStore) Samples(ctx context.Context) ([]Sample, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, distance_km, traffic_level, agent_score, minutes, created_at
		FROM eta_samples
		ORDER BY id`)
	if err != nil {
		return nil, types.WrapError(types.ETA_STORE_FAILED, "failed to query samples", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.ID, &sample.DistanceKm, &sample.TrafficLevel,
			&sample.AgentScore, &sample.Minutes, &sample.CreatedAt); err != nil {
			return nil, types.WrapError(types.ETA_STORE_FAILED, "failed to scan sample", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.ETA_STORE_FAILED, "failed to iterate samples", err)
	}

	return samples, nil
}

// Count returns the number of stored samples.
func (s *SampleStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM eta_samples`).Scan(&count)
	if err != nil {
		return 0, types.WrapError(types.ETA_STORE_FAILED, "failed to count samples", err)
	}
	return count, nil
}

// Health verifies the database connection.
func (s *SampleStore) Health(ctx context.Context) types.HealthStatus {
	if err := s.conn.PingContext(ctx); err != nil {
		return types.Unhealthy(fmt.Sprintf("sample store ping failed: %v", err))
	}
	return types.Healthy("sample store reachable")
}
