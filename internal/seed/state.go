package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which catalog files have already been applied, with what the
// file contributed, so repeated seeder runs skip unchanged files and the
// summary can report the cumulative catalog size.
type StateDB struct {
	db *sql.DB
}

const stateSchema = `CREATE TABLE IF NOT EXISTS applied_files (
	path       TEXT PRIMARY KEY,
	size       INTEGER NOT NULL,
	hash       TEXT NOT NULL,
	exercises  INTEGER NOT NULL DEFAULT 0,
	templates  INTEGER NOT NULL DEFAULT 0,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &StateDB{db: db}, nil
}

// IsApplied checks if a file has already been applied with the same size and
// hash. A changed file re-applies under the same path.
func (s *StateDB) IsApplied(relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM applied_files WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkApplied records a successfully applied file along with what it
// contributed to the catalog.
func (s *StateDB) MarkApplied(relPath string, size int64, hash string, stats Stats) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO applied_files (path, size, hash, exercises, templates)
		 VALUES (?, ?, ?, ?, ?)`,
		relPath, size, hash, stats.Exercises, stats.Templates,
	)
	return err
}

// Totals returns the number of applied files and the cumulative catalog
// counts across every recorded run.
func (s *StateDB) Totals() (int, Stats, error) {
	var files int
	var stats Stats
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(exercises), 0), COALESCE(SUM(templates), 0) FROM applied_files`,
	).Scan(&files, &stats.Exercises, &stats.Templates)
	if err != nil {
		return 0, Stats{}, err
	}
	return files, stats, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
