package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"mastery-scheduler/internal/models"
)

// PostgresTrialStore is a TrialStore backed by PostgreSQL, for deployments
// where the scheduler runs as a shared service instead of against a local
// file.
type PostgresTrialStore struct {
	db *sql.DB
}

// OpenPostgresTrialStore connects to the database at the given URL and
// creates the trial table if it does not exist.
func OpenPostgresTrialStore(databaseURL string) (*PostgresTrialStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open trial store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to trial store: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exercise_trials (
			id BIGSERIAL PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			score REAL NOT NULL,
			trial_timestamp BIGINT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize trial store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS exercise_trials_by_unit_time
		ON exercise_trials (exercise_id, trial_timestamp)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize trial store index: %w", err)
	}
	return &PostgresTrialStore{db: db}, nil
}

// Scores retrieves the most recent trials for the given exercise, newest
// first.
func (s *PostgresTrialStore) Scores(exerciseID string, numScores int) ([]models.ExerciseTrial, error) {
	rows, err := s.db.Query(`
		SELECT score, trial_timestamp FROM exercise_trials
		WHERE exercise_id = $1
		ORDER BY trial_timestamp DESC LIMIT $2
	`, exerciseID, numScores)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials for exercise %s: %w", exerciseID, err)
	}
	defer rows.Close()

	var trials []models.ExerciseTrial
	for rows.Next() {
		var trial models.ExerciseTrial
		if err := rows.Scan(&trial.Score, &trial.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan trial for exercise %s: %w", exerciseID, err)
		}
		trials = append(trials, trial)
	}
	return trials, rows.Err()
}

// Record appends a trial for the given exercise.
func (s *PostgresTrialStore) Record(exerciseID string, score models.MasteryScore, timestamp int64) error {
	if !score.Valid() {
		return fmt.Errorf("invalid mastery score %d for exercise %s", score, exerciseID)
	}
	if _, err := s.db.Exec(`
		INSERT INTO exercise_trials (exercise_id, score, trial_timestamp)
		VALUES ($1, $2, $3)
	`, exerciseID, score.Float(), timestamp); err != nil {
		return fmt.Errorf("failed to record trial for exercise %s: %w", exerciseID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *PostgresTrialStore) Close() error {
	return s.db.Close()
}
