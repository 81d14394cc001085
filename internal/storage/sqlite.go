package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"mastery-scheduler/internal/models"
)

// sqliteDSN builds a DSN enabling WAL journaling and relaxed syncing, which
// improves read and write performance for the small, append-heavy workloads
// the scheduler produces.
func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
}

// SQLiteTrialStore is a TrialStore backed by a local SQLite database. Unit
// ids are interned into an integer uid table so the trial rows stay compact.
type SQLiteTrialStore struct {
	db *sql.DB
}

// OpenSQLiteTrialStore opens (and if needed initializes) the trial database
// at the given path.
func OpenSQLiteTrialStore(path string) (*SQLiteTrialStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open trial store at %s: %w", path, err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS uids (
			unit_uid INTEGER PRIMARY KEY,
			unit_id TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY,
			unit_uid INTEGER NOT NULL REFERENCES uids (unit_uid),
			score REAL,
			timestamp INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS trials_by_unit_time ON trials (unit_uid, timestamp)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize trial store: %w", err)
		}
	}
	return &SQLiteTrialStore{db: db}, nil
}

// Scores retrieves the most recent trials for the given exercise, newest
// first.
func (s *SQLiteTrialStore) Scores(exerciseID string, numScores int) ([]models.ExerciseTrial, error) {
	rows, err := s.db.Query(`
		SELECT score, timestamp FROM trials
		WHERE unit_uid = (SELECT unit_uid FROM uids WHERE unit_id = ?)
		ORDER BY timestamp DESC LIMIT ?
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
func (s *SQLiteTrialStore) Record(exerciseID string, score models.MasteryScore, timestamp int64) error {
	if !score.Valid() {
		return fmt.Errorf("invalid mastery score %d for exercise %s", score, exerciseID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO uids (unit_id) VALUES (?)`, exerciseID); err != nil {
		return fmt.Errorf("failed to intern exercise %s: %w", exerciseID, err)
	}
	if _, err := tx.Exec(`
		INSERT INTO trials (unit_uid, score, timestamp)
		VALUES ((SELECT unit_uid FROM uids WHERE unit_id = ?), ?, ?)
	`, exerciseID, score.Float(), timestamp); err != nil {
		return fmt.Errorf("failed to record trial for exercise %s: %w", exerciseID, err)
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteTrialStore) Close() error {
	return s.db.Close()
}

// SQLiteBlacklist is a Blacklist backed by SQLite with a write-through
// in-memory cache, so membership checks during scheduling never touch disk.
type SQLiteBlacklist struct {
	mu    sync.RWMutex
	cache map[string]bool
	db    *sql.DB
}

// OpenSQLiteBlacklist opens (and if needed initializes) the blacklist
// database at the given path and warms the cache with its entries.
func OpenSQLiteBlacklist(path string) (*SQLiteBlacklist, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open blacklist at %s: %w", path, err)
	}
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS blacklist (unit_id TEXT NOT NULL UNIQUE)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize blacklist: %w", err)
	}

	b := &SQLiteBlacklist{cache: make(map[string]bool), db: db}
	entries, err := b.Entries()
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, unitID := range entries {
		b.cache[unitID] = true
	}
	return b, nil
}

// Add puts the given unit on the blacklist.
func (b *SQLiteBlacklist) Add(unitID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cache[unitID] {
		return nil
	}
	if _, err := b.db.Exec(
		`INSERT OR IGNORE INTO blacklist (unit_id) VALUES (?)`, unitID); err != nil {
		return fmt.Errorf("failed to add unit %s to blacklist: %w", unitID, err)
	}
	b.cache[unitID] = true
	return nil
}

// Remove takes the given unit off the blacklist.
func (b *SQLiteBlacklist) Remove(unitID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.db.Exec(`DELETE FROM blacklist WHERE unit_id = ?`, unitID); err != nil {
		return fmt.Errorf("failed to remove unit %s from blacklist: %w", unitID, err)
	}
	b.cache[unitID] = false
	return nil
}

// Blacklisted reports whether the given unit is on the blacklist.
func (b *SQLiteBlacklist) Blacklisted(unitID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cache[unitID], nil
}

// Entries returns all the units on the blacklist.
func (b *SQLiteBlacklist) Entries() ([]string, error) {
	rows, err := b.db.Query(`SELECT unit_id FROM blacklist ORDER BY unit_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query blacklist: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var unitID string
		if err := rows.Scan(&unitID); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		entries = append(entries, unitID)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (b *SQLiteBlacklist) Close() error {
	return b.db.Close()
}
